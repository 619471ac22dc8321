package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
)

// Path is the input to the generators: a named standalone LUT.
type Path struct {
	Name   string
	Closed bool
	LUT    curvenet.StandaloneLUT
}

// FromGroup captures the standalone LUT of a connected group. An empty
// name falls back to the group id.
func FromGroup(g *curvenet.Group, name string) (Path, error) {
	if !g.Connected() {
		return Path{}, fmt.Errorf("%s: %w", g.ID, g.Err)
	}
	if len(g.Standalone.Samples) < 2 {
		return Path{}, fmt.Errorf("%s: standalone LUT has %d samples", g.ID, len(g.Standalone.Samples))
	}
	if name == "" {
		name = "path_" + g.ID.String()
	}
	return Path{Name: name, Closed: g.Closed(), LUT: g.Standalone}, nil
}

func (p Path) kind() string {
	if p.Closed {
		return "ring"
	}
	return "open"
}

// formatFloat writes v with the shortest float32 representation. With
// decimal set, integral values get a trailing ".0".
func formatFloat(v float32, decimal bool) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if decimal && !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
