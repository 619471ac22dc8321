package codegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GenerateRust generates a Rust module for the path.
func GenerateRust(p Path) string {
	var sb strings.Builder
	name := toSnakeCase(sanitizeName(p.Name))
	NAME := strings.ToUpper(name)

	// Header
	sb.WriteString(fmt.Sprintf(`//! Generated path: %s (%s)

`, p.Name, p.kind()))

	sb.WriteString("/// Arc length of the path.\n")
	sb.WriteString(fmt.Sprintf("pub const %s_LENGTH: f32 = %s;\n\n", NAME, formatFloat(p.LUT.PathLength, true)))

	sb.WriteString("/// Positions at uniform steps of the path parameter.\n")
	sb.WriteString(fmt.Sprintf("pub static %s_SAMPLES: [[f32; 2]; %d] = [\n", NAME, len(p.LUT.Samples)))
	for _, s := range p.LUT.Samples {
		sb.WriteString(fmt.Sprintf("    [%s, %s],\n", formatFloat(s.X, true), formatFloat(s.Y, true)))
	}
	sb.WriteString("];\n\n")

	sb.WriteString("/// Returns the point at `t` in [0, 1]. `t` is clamped.\n")
	sb.WriteString(fmt.Sprintf("pub fn %s_position(t: f32) -> (f32, f32) {\n", name))
	sb.WriteString(fmt.Sprintf("    let last = %s_SAMPLES.len() - 1;\n", NAME))
	sb.WriteString("    if !(t > 0.0) {\n")
	sb.WriteString(fmt.Sprintf("        return (%s_SAMPLES[0][0], %s_SAMPLES[0][1]);\n", NAME, NAME))
	sb.WriteString("    }\n")
	sb.WriteString("    let f = t * last as f32;\n")
	sb.WriteString("    let i = f as usize;\n")
	sb.WriteString("    if t >= 1.0 || i >= last {\n")
	sb.WriteString(fmt.Sprintf("        return (%s_SAMPLES[last][0], %s_SAMPLES[last][1]);\n", NAME, NAME))
	sb.WriteString("    }\n")
	sb.WriteString("    let frac = f - i as f32;\n")
	sb.WriteString(fmt.Sprintf("    let (a, b) = (%s_SAMPLES[i], %s_SAMPLES[i + 1]);\n", NAME, NAME))
	sb.WriteString("    (a[0] + (b[0] - a[0]) * frac, a[1] + (b[1] - a[1]) * frac)\n")
	sb.WriteString("}\n")

	return sb.String()
}

func toPascalCase(s string) string {
	if s == "" {
		return "Unknown"
	}
	words := splitWords(s)
	var result strings.Builder
	for _, word := range words {
		if len(word) > 0 {
			result.WriteString(mapFirst(strings.ToLower(word), unicode.ToUpper))
		}
	}
	name := result.String()
	if name == "" {
		return "Unknown"
	}
	return name
}

// mapFirst applies f to the first rune of s.
func mapFirst(s string, f func(rune) rune) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(f(r)) + s[n:]
}

func toSnakeCase(s string) string {
	words := splitWords(s)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "_")
}

func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
