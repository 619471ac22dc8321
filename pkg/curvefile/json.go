package curvefile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

const (
	typeNetwork = "curvenet"
	typeGroup   = "curvegroup"
	version     = 1
)

// Network is a saved network together with its descriptive metadata.
type Network struct {
	Name        string
	Description string
	Save        curvenet.NetworkSave
}

// jsonNetwork is the JSON representation of a network.
type jsonNetwork struct {
	Type        string      `json:"type"`
	Version     int         `json:"version"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Curves      []jsonCurve `json:"curves"`
	Groups      [][]uint64  `json:"groups,omitempty"`
	GroupIDs    []uint64    `json:"group_ids,omitempty"`
	LastCurve   uint64      `json:"last_curve_id,omitempty"`
	LastGroup   uint64      `json:"last_group_id,omitempty"`
}

type jsonCurve struct {
	ID           uint64      `json:"id"`
	Name         string      `json:"name,omitempty"`
	Start        [2]float64  `json:"start"`
	ControlStart [2]float64  `json:"control_start"`
	ControlEnd   [2]float64  `json:"control_end"`
	End          [2]float64  `json:"end"`
	Latches      []jsonLatch `json:"latches,omitempty"`
}

type jsonLatch struct {
	Edge   string `json:"edge"`
	To     uint64 `json:"to"`
	ToEdge string `json:"to_edge"`
}

// jsonGroup is the JSON representation of an exported group.
type jsonGroup struct {
	Type       string       `json:"type"`
	Version    int          `json:"version"`
	Members    []jsonMember `json:"members"`
	PathLength float32      `json:"path_length"`
	Samples    [][2]float32 `json:"samples,omitempty"`
}

type jsonMember struct {
	Curve jsonCurve `json:"curve"`
	Edge  string    `json:"edge"`
	TMin  float64   `json:"t_min"`
	TMax  float64   `json:"t_max"`
	LUT   []float64 `json:"lut,omitempty"`
}

func pt(p curve.Point) [2]float64 { return [2]float64{p.X, p.Y} }

func unpt(a [2]float64) curve.Point { return curve.Pt(a[0], a[1]) }

func curveToJSON(cs curvenet.CurveSave) jsonCurve {
	jc := jsonCurve{
		ID:           cs.ID,
		Name:         cs.Name,
		Start:        pt(cs.Start),
		ControlStart: pt(cs.ControlStart),
		ControlEnd:   pt(cs.ControlEnd),
		End:          pt(cs.End),
	}
	for _, l := range cs.Latches {
		jc.Latches = append(jc.Latches, jsonLatch{Edge: l.Edge.String(), To: l.To, ToEdge: l.ToEdge.String()})
	}
	return jc
}

func curveFromJSON(jc jsonCurve) (curvenet.CurveSave, error) {
	cs := curvenet.CurveSave{
		ID:           jc.ID,
		Name:         jc.Name,
		Start:        unpt(jc.Start),
		ControlStart: unpt(jc.ControlStart),
		ControlEnd:   unpt(jc.ControlEnd),
		End:          unpt(jc.End),
	}
	for _, jl := range jc.Latches {
		e, err := curvenet.ParseAnchorEdge(jl.Edge)
		if err != nil {
			return cs, fmt.Errorf("curve %d: %w", jc.ID, err)
		}
		te, err := curvenet.ParseAnchorEdge(jl.ToEdge)
		if err != nil {
			return cs, fmt.Errorf("curve %d: %w", jc.ID, err)
		}
		cs.Latches = append(cs.Latches, curvenet.LatchSave{Edge: e, To: jl.To, ToEdge: te})
	}
	return cs, nil
}

func checkHeader(typ string, ver int, want string) error {
	if typ != "" && typ != want {
		return fmt.Errorf("expected type %q, got %q", want, typ)
	}
	if ver > version {
		return fmt.Errorf("unsupported version %d", ver)
	}
	return nil
}

// ParseNetworkJSON parses a network from JSON.
func ParseNetworkJSON(data []byte) (*Network, error) {
	var j jsonNetwork
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if err := checkHeader(j.Type, j.Version, typeNetwork); err != nil {
		return nil, err
	}

	n := &Network{Name: j.Name, Description: j.Description}
	for _, jc := range j.Curves {
		cs, err := curveFromJSON(jc)
		if err != nil {
			return nil, err
		}
		n.Save.Curves = append(n.Save.Curves, cs)
	}
	if len(j.GroupIDs) > 0 && len(j.GroupIDs) != len(j.Groups) {
		return nil, fmt.Errorf("%d group ids for %d groups", len(j.GroupIDs), len(j.Groups))
	}
	n.Save.Groups = j.Groups
	n.Save.GroupIDs = j.GroupIDs
	n.Save.LastCurve, n.Save.LastGroup = j.LastCurve, j.LastGroup
	return n, nil
}

// NetworkToJSON converts a network to JSON.
func NetworkToJSON(n *Network, pretty bool) ([]byte, error) {
	j := jsonNetwork{
		Type:        typeNetwork,
		Version:     version,
		Name:        n.Name,
		Description: n.Description,
		Curves:      []jsonCurve{},
		Groups:      n.Save.Groups,
		GroupIDs:    n.Save.GroupIDs,
		LastCurve:   n.Save.LastCurve,
		LastGroup:   n.Save.LastGroup,
	}
	for _, cs := range n.Save.Curves {
		j.Curves = append(j.Curves, curveToJSON(cs))
	}

	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}

// ParseGroupJSON parses an exported group from JSON.
func ParseGroupJSON(data []byte) (curvenet.GroupSave, error) {
	var j jsonGroup
	if err := json.Unmarshal(data, &j); err != nil {
		return curvenet.GroupSave{}, err
	}
	if err := checkHeader(j.Type, j.Version, typeGroup); err != nil {
		return curvenet.GroupSave{}, err
	}

	var g curvenet.GroupSave
	for _, jm := range j.Members {
		cs, err := curveFromJSON(jm.Curve)
		if err != nil {
			return g, err
		}
		e, err := curvenet.ParseAnchorEdge(jm.Edge)
		if err != nil {
			return g, fmt.Errorf("member %d: %w", jm.Curve.ID, err)
		}
		g.Members = append(g.Members, curvenet.MemberSave{Curve: cs, Edge: e, TMin: jm.TMin, TMax: jm.TMax, LUT: jm.LUT})
	}
	g.Standalone.PathLength = j.PathLength
	for _, s := range j.Samples {
		g.Standalone.Samples = append(g.Standalone.Samples, curvenet.Sample{X: s[0], Y: s[1]})
	}
	return g, nil
}

// GroupToJSON converts an exported group to JSON.
func GroupToJSON(g curvenet.GroupSave, pretty bool) ([]byte, error) {
	j := jsonGroup{
		Type:       typeGroup,
		Version:    version,
		Members:    []jsonMember{},
		PathLength: g.Standalone.PathLength,
	}
	for _, m := range g.Members {
		j.Members = append(j.Members, jsonMember{
			Curve: curveToJSON(m.Curve),
			Edge:  m.Edge.String(),
			TMin:  m.TMin,
			TMax:  m.TMax,
			LUT:   m.LUT,
		})
	}
	for _, s := range g.Standalone.Samples {
		j.Samples = append(j.Samples, [2]float32{s.X, s.Y})
	}

	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}
