// Package codegen generates sample tables from curve groups.
package codegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GenerateC generates a single-header C library for the path. Define
// <NAME>_IMPLEMENTATION in one translation unit before including it.
func GenerateC(p Path) string {
	var sb strings.Builder
	name := toSnakeCase(sanitizeName(p.Name))
	NAME := strings.ToUpper(name)

	// Header
	sb.WriteString(fmt.Sprintf(`// Generated path: %s (%s)

#ifndef %s_H
#define %s_H

`, p.Name, p.kind(), NAME, NAME))

	sb.WriteString(fmt.Sprintf("#define %s_SAMPLE_COUNT %d\n", NAME, len(p.LUT.Samples)))
	sb.WriteString(fmt.Sprintf("#define %s_LENGTH %sf\n\n", NAME, formatFloat(p.LUT.PathLength, true)))

	sb.WriteString(fmt.Sprintf("extern const float %s_samples[%s_SAMPLE_COUNT][2];\n\n", name, NAME))
	sb.WriteString("// Writes the point at t in [0, 1] to x and y. t is clamped.\n")
	sb.WriteString(fmt.Sprintf("void %s_position(float t, float *x, float *y);\n\n", name))
	sb.WriteString(fmt.Sprintf("#endif // %s_H\n\n", NAME))

	// Implementation
	sb.WriteString(fmt.Sprintf("#ifdef %s_IMPLEMENTATION\n\n", NAME))
	sb.WriteString(fmt.Sprintf("const float %s_samples[%s_SAMPLE_COUNT][2] = {\n", name, NAME))
	for _, s := range p.LUT.Samples {
		sb.WriteString(fmt.Sprintf("    {%sf, %sf},\n", formatFloat(s.X, true), formatFloat(s.Y, true)))
	}
	sb.WriteString("};\n\n")

	sb.WriteString(fmt.Sprintf("void %s_position(float t, float *x, float *y) {\n", name))
	sb.WriteString(fmt.Sprintf("    const int last = %s_SAMPLE_COUNT - 1;\n", NAME))
	sb.WriteString("    if (!(t > 0.0f)) {\n")
	sb.WriteString(fmt.Sprintf("        *x = %s_samples[0][0];\n", name))
	sb.WriteString(fmt.Sprintf("        *y = %s_samples[0][1];\n", name))
	sb.WriteString("        return;\n")
	sb.WriteString("    }\n")
	sb.WriteString("    float f = t * (float)last;\n")
	sb.WriteString("    int i = (int)f;\n")
	sb.WriteString("    if (t >= 1.0f || i >= last) {\n")
	sb.WriteString(fmt.Sprintf("        *x = %s_samples[last][0];\n", name))
	sb.WriteString(fmt.Sprintf("        *y = %s_samples[last][1];\n", name))
	sb.WriteString("        return;\n")
	sb.WriteString("    }\n")
	sb.WriteString("    float frac = f - (float)i;\n")
	sb.WriteString(fmt.Sprintf("    const float *a = %s_samples[i];\n", name))
	sb.WriteString(fmt.Sprintf("    const float *b = %s_samples[i + 1];\n", name))
	sb.WriteString("    *x = a[0] + (b[0] - a[0]) * frac;\n")
	sb.WriteString("    *y = a[1] + (b[1] - a[1]) * frac;\n")
	sb.WriteString("}\n\n")

	sb.WriteString("#endif // " + NAME + "_IMPLEMENTATION\n")

	return sb.String()
}

// Helper functions

func sanitizeName(s string) string {
	if s == "" {
		return "unnamed"
	}
	var result strings.Builder
	for i, r := range s {
		if unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) || r == '_' {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' {
			result.WriteRune('_')
		}
	}
	name := result.String()
	if name == "" {
		return "unnamed"
	}
	// Ensure starts with letter
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		name = "p_" + name
	}
	return name
}
