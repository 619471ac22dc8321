package codegen

import (
	"fmt"
	"strings"
	"unicode"
)

// GenerateGo generates Go code for the path: a sample table, its length
// and a Position function interpolating the table.
// The generated code is compatible with both standard Go and TinyGo.
func GenerateGo(p Path, packageName string) string {
	var sb strings.Builder
	typeName := toPascalCase(sanitizeName(p.Name))
	table := mapFirst(typeName, unicode.ToLower) + "Samples"
	if packageName == "" {
		packageName = "paths"
	}

	// Header
	sb.WriteString(fmt.Sprintf(`// Code generated from curve group. DO NOT EDIT.
// Path: %s (%s)
// Samples: %d

package %s

`, p.Name, p.kind(), len(p.LUT.Samples), packageName))

	sb.WriteString(fmt.Sprintf("// %sLength is the arc length of the path.\n", typeName))
	sb.WriteString(fmt.Sprintf("const %sLength float32 = %s\n\n", typeName, formatFloat(p.LUT.PathLength, false)))

	sb.WriteString(fmt.Sprintf("// %s holds positions at uniform steps of the path parameter.\n", table))
	sb.WriteString(fmt.Sprintf("var %s = [...][2]float32{\n", table))
	for _, s := range p.LUT.Samples {
		sb.WriteString(fmt.Sprintf("\t{%s, %s},\n", formatFloat(s.X, false), formatFloat(s.Y, false)))
	}
	sb.WriteString("}\n\n")

	sb.WriteString(fmt.Sprintf("// %sPosition returns the point at t in [0, 1]. t is clamped.\n", typeName))
	sb.WriteString(fmt.Sprintf("func %sPosition(t float32) (x, y float32) {\n", typeName))
	sb.WriteString(fmt.Sprintf("\tconst last = len(%s) - 1\n", table))
	sb.WriteString("\tif !(t > 0) {\n")
	sb.WriteString(fmt.Sprintf("\t\treturn %s[0][0], %s[0][1]\n", table, table))
	sb.WriteString("\t}\n")
	sb.WriteString("\tf := t * last\n")
	sb.WriteString("\ti := int(f)\n")
	sb.WriteString("\tif t >= 1 || i >= last {\n")
	sb.WriteString(fmt.Sprintf("\t\treturn %s[last][0], %s[last][1]\n", table, table))
	sb.WriteString("\t}\n")
	sb.WriteString("\tfrac := f - float32(i)\n")
	sb.WriteString(fmt.Sprintf("\ta, b := %s[i], %s[i+1]\n", table, table))
	sb.WriteString("\treturn a[0] + (b[0]-a[0])*frac, a[1] + (b[1]-a[1])*frac\n")
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTinyGo is an alias for GenerateGo as the output is compatible.
func GenerateTinyGo(p Path, packageName string) string {
	return GenerateGo(p, packageName)
}
