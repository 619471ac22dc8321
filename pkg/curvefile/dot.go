package curvefile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
)

// GenerateDOT converts the latch graph to Graphviz DOT format. Curves are
// nodes, latches are edges labelled with the joined edges, and groups are
// clusters.
func GenerateDOT(s *curvenet.Store, title string) string {
	var sb strings.Builder

	sb.WriteString("graph CurveNet {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, shape=box, style=rounded];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=9];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		fmt.Fprintf(&sb, "    label=\"%s\";\n", escapeDOT(title))
		sb.WriteString("\n")
	}

	grouped := make(map[curvenet.CurveID]bool)
	for _, g := range s.Groups() {
		fmt.Fprintf(&sb, "    subgraph cluster_%s {\n", g.ID)
		fmt.Fprintf(&sb, "        label=\"%s\";\n", escapeDOT(groupLabel(g)))
		if !g.Connected() {
			sb.WriteString("        style=dashed;\n")
		}
		for _, id := range g.Members {
			grouped[id] = true
			c, _ := s.Curve(id)
			writeDOTNode(&sb, "        ", c)
		}
		sb.WriteString("    }\n")
	}

	curves := s.Curves()
	for _, c := range curves {
		if !grouped[c.ID] {
			writeDOTNode(&sb, "    ", c)
		}
	}
	sb.WriteString("\n")

	for _, c := range curves {
		for _, e := range [...]curvenet.AnchorEdge{curvenet.Start, curvenet.End} {
			l := c.LatchAt(e)
			if l == nil {
				continue
			}
			self := curvenet.EdgeRef{Curve: c.ID, Edge: e}
			if l.Partner().Less(self) {
				continue
			}
			fmt.Fprintf(&sb, "    \"%s\" -- \"%s\" [taillabel=\"%s\", headlabel=\"%s\"];\n",
				c.ID, l.LatchedTo, e, l.PartnerEdge)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeDOTNode(sb *strings.Builder, indent string, c *curvenet.Curve) {
	label := c.ID.String()
	if c.Name != "" {
		label = fmt.Sprintf("%s\\n%s", c.ID, escapeDOT(c.Name))
	}
	fmt.Fprintf(sb, "%s\"%s\" [label=\"%s\"];\n", indent, c.ID, label)
}

func groupLabel(g *curvenet.Group) string {
	switch {
	case g.Closed():
		return fmt.Sprintf("%s (ring)", g.ID)
	case g.Connected():
		return fmt.Sprintf("%s (%s)", g.ID, g.Ends)
	}
	return fmt.Sprintf("%s (broken)", g.ID)
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
