// Command curvenet is a CLI tool for working with curve networks.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/curve-toolkit/pkg/codegen"
	"github.com/ha1tch/curve-toolkit/pkg/curvefile"
	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"honnef.co/go/curve"
)

const usage = `curvenet - Bézier curve network toolkit

Usage:
  curvenet [-c config] [-v | --quiet] <command> [options]

Commands:
  new        Create an empty network file
  add        Add a curve (8 coordinates) or a line (4 coordinates)
  spline     Add a smooth latched chain through waypoints
  remove     Remove a curve
  move       Move one anchor of a curve
  name       Set a curve's name
  latch      Latch two curve edges together
  unlatch    Free a curve edge
  snap       Latch a free edge to the nearest free edge in range
  group      Group curves into a chain
  ungroup    Dissolve a group
  import     Import a group JSON file into a network
  info       Show network information
  validate   Check a network for broken invariants
  convert    Convert between formats (json, cnet) or export a group
  dot        Generate Graphviz DOT output
  svg        Render to SVG
  png        Render to PNG
  sample     Print positions and normals along a group
  probe      Query a group interactively
  gen        Generate a lookup table for Go, TinyGo, C or Rust
  view       Preview a network in the terminal
  config     Print the effective configuration

Examples:
  curvenet new rail.cnet -n "Main rail"
  curvenet add rail.cnet 0 0 100 0
  curvenet add rail.cnet 100 0 150 0 200 50 200 100
  curvenet latch rail.cnet c1 end c2 start
  curvenet group rail.cnet c1 c2
  curvenet sample rail.cnet g1 -n 5
  curvenet sample rail.cnet g1 --standalone 0.5
  curvenet gen rail.cnet g1 -l c -o rail.h
  curvenet dot rail.cnet | dot -Tpng -o rail.png

Curves are addressed as c<N> or <N>, groups as g<N> or <N>.
`

// usageError is returned when a command is called with missing or
// malformed arguments. It carries the command's usage line.
type usageError string

func (e usageError) Error() string {
	return "Usage: curvenet " + string(e)
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	settings curvefile.Settings
	logger   *slog.Logger
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	configPath := curvefile.DefaultConfigPath()
	verbose, quiet := false, false

	// Global options come before the command.
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-c", "--config":
			if len(args) < 2 {
				fmt.Fprintln(a.errOut, "Missing value for -c")
				return 1
			}
			configPath = args[1]
			args = args[1:]
		case "-v", "--verbose":
			verbose = true
		case "-q", "--quiet":
			quiet = true
		case "-h", "--help":
			fmt.Fprint(a.out, usage)
			return 0
		default:
			fmt.Fprintf(a.errOut, "Unknown option: %s\n", args[0])
			fmt.Fprint(a.errOut, usage)
			return 1
		}
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprint(a.errOut, usage)
		return 1
	}

	settings, err := curvefile.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error loading config: %v\n", err)
		return 1
	}
	a.settings = settings
	level := settings.LogLevel
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	cmd, args := args[0], args[1:]
	a.logger.Debug("running command", "command", cmd, "config", configPath)

	switch cmd {
	case "new":
		err = a.cmdNew(args)
	case "add":
		err = a.cmdAdd(args)
	case "spline":
		err = a.cmdSpline(args)
	case "remove":
		err = a.cmdRemove(args)
	case "move":
		err = a.cmdMove(args)
	case "name":
		err = a.cmdName(args)
	case "latch":
		err = a.cmdLatch(args)
	case "unlatch":
		err = a.cmdUnlatch(args)
	case "snap":
		err = a.cmdSnap(args)
	case "group":
		err = a.cmdGroup(args)
	case "ungroup":
		err = a.cmdUngroup(args)
	case "import":
		err = a.cmdImport(args)
	case "info":
		err = a.cmdInfo(args)
	case "validate":
		err = a.cmdValidate(args)
	case "convert":
		err = a.cmdConvert(args)
	case "dot":
		err = a.cmdDot(args)
	case "svg":
		err = a.cmdSVG(args)
	case "png":
		err = a.cmdPNG(args)
	case "sample":
		err = a.cmdSample(args)
	case "probe":
		err = a.cmdProbe(args)
	case "gen":
		err = a.cmdGen(args)
	case "view":
		err = a.cmdView(args)
	case "config":
		err = a.cmdConfig(args)
	case "help":
		fmt.Fprint(a.out, usage)
	default:
		fmt.Fprintf(a.errOut, "Unknown command: %s\n", cmd)
		fmt.Fprint(a.errOut, usage)
		return 1
	}

	if err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(a.errOut, ue.Error())
		} else {
			fmt.Fprintf(a.errOut, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// load reads a network file into a fresh store using the active settings.
func (a *app) load(path string) (*curvenet.Store, *curvefile.Network, error) {
	s, n, _, err := curvefile.LoadStore(path, a.settings.Network, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	a.logger.Debug("loaded network", "path", path, "curves", s.Len(), "groups", len(s.GroupIDs()))
	return s, n, nil
}

func (a *app) save(path string, s *curvenet.Store, meta *curvefile.Network) error {
	if err := curvefile.SaveStore(path, s, meta); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// writeOutput writes data to output, or to stdout when output is empty.
func (a *app) writeOutput(output string, data []byte) error {
	if output == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Written: %s\n", output)
	return nil
}

func parseCurveID(s string) (curvenet.CurveID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "c"), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid curve id %q", s)
	}
	return curvenet.CurveID(n), nil
}

func parseGroupID(s string) (curvenet.GroupID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "g"), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid group id %q", s)
	}
	return curvenet.GroupID(n), nil
}

func parseAnchor(s string) (curvenet.Anchor, error) {
	switch strings.ToLower(s) {
	case "start", "s":
		return curvenet.AnchorStart, nil
	case "end", "e":
		return curvenet.AnchorEnd, nil
	case "control_start", "cs":
		return curvenet.AnchorControlStart, nil
	case "control_end", "ce":
		return curvenet.AnchorControlEnd, nil
	}
	return 0, fmt.Errorf("unknown anchor %q", s)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// splitArgs separates positional arguments from options. Options listed in
// withValue consume the following argument.
func splitArgs(args []string, withValue ...string) (pos []string, opts map[string]string) {
	opts = make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || isNumber(arg) {
			pos = append(pos, arg)
			continue
		}
		takes := false
		for _, w := range withValue {
			if arg == w {
				takes = true
				break
			}
		}
		if takes && i+1 < len(args) {
			opts[arg] = args[i+1]
			i++
		} else {
			opts[arg] = ""
		}
	}
	return pos, opts
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// option returns the value of the first of names present in opts.
func option(opts map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := opts[n]; ok {
			return v, true
		}
	}
	return "", false
}

func intOption(opts map[string]string, def int, names ...string) (int, error) {
	v, ok := option(opts, names...)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", names[0], v)
	}
	return n, nil
}

func (a *app) cmdNew(args []string) error {
	pos, opts := splitArgs(args, "-n", "--name", "-d", "--description")
	if len(pos) != 1 {
		return usageError("new <file> [-n name] [-d description] [--force]")
	}
	path := pos[0]
	if _, force := opts["--force"]; !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	meta := &curvefile.Network{}
	meta.Name, _ = option(opts, "-n", "--name")
	meta.Description, _ = option(opts, "-d", "--description")

	s := curvenet.NewStore(a.settings.Network, a.logger)
	if err := a.save(path, s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created: %s\n", path)
	return nil
}

func (a *app) cmdAdd(args []string) error {
	const use = usageError("add <file> x0 y0 [cx0 cy0 cx1 cy1] x1 y1 [-n name]")
	pos, opts := splitArgs(args, "-n", "--name")
	if len(pos) != 5 && len(pos) != 9 {
		return use
	}
	v, err := parseFloats(pos[1:])
	if err != nil {
		return err
	}
	s, meta, err := a.load(pos[0])
	if err != nil {
		return err
	}

	var id curvenet.CurveID
	if len(v) == 4 {
		id = s.AddLine(curve.Pt(v[0], v[1]), curve.Pt(v[2], v[3]))
	} else {
		id = s.AddCurve(curve.Pt(v[0], v[1]), curve.Pt(v[2], v[3]), curve.Pt(v[4], v[5]), curve.Pt(v[6], v[7]))
	}
	if name, ok := option(opts, "-n", "--name"); ok {
		if err := s.SetName(id, name); err != nil {
			return err
		}
	}
	if err := a.save(pos[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s\n", id)
	return nil
}

func (a *app) cmdSpline(args []string) error {
	pos, opts := splitArgs(args)
	if len(pos) < 5 || len(pos)%2 != 1 {
		return usageError("spline <file> x0 y0 x1 y1 [x y]... [--closed] [--group]")
	}
	v, err := parseFloats(pos[1:])
	if err != nil {
		return err
	}
	points := make([]curve.Point, 0, len(v)/2)
	for i := 0; i < len(v); i += 2 {
		points = append(points, curve.Pt(v[i], v[i+1]))
	}
	_, closed := opts["--closed"]

	s, meta, err := a.load(pos[0])
	if err != nil {
		return err
	}
	ids, err := s.AddSpline(points, closed)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %v\n", ids)
	if _, group := opts["--group"]; group {
		gid, err := s.NewGroup(ids...)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created %s\n", gid)
	}
	return a.save(pos[0], s, meta)
}

func (a *app) cmdRemove(args []string) error {
	if len(args) != 2 {
		return usageError("remove <file> <curve>")
	}
	id, err := parseCurveID(args[1])
	if err != nil {
		return err
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	if err := s.RemoveCurve(id); err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", id)
	return nil
}

func (a *app) cmdMove(args []string) error {
	if len(args) != 5 {
		return usageError("move <file> <curve> <start|end|control_start|control_end> <x> <y>")
	}
	id, err := parseCurveID(args[1])
	if err != nil {
		return err
	}
	anchor, err := parseAnchor(args[2])
	if err != nil {
		return err
	}
	v, err := parseFloats(args[3:])
	if err != nil {
		return err
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	if err := s.MoveAnchor(id, anchor, curve.Pt(v[0], v[1])); err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %s:%s to (%g, %g)\n", id, anchor, v[0], v[1])
	return nil
}

func (a *app) cmdName(args []string) error {
	if len(args) != 3 {
		return usageError("name <file> <curve> <name>")
	}
	id, err := parseCurveID(args[1])
	if err != nil {
		return err
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	if err := s.SetName(id, args[2]); err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Named %s %q\n", id, args[2])
	return nil
}

func (a *app) cmdLatch(args []string) error {
	pos, opts := splitArgs(args)
	if len(pos) != 5 {
		return usageError("latch <file> <curve> <edge> <curve> <edge> [--move]")
	}
	ida, err := parseCurveID(pos[1])
	if err != nil {
		return err
	}
	ea, err := curvenet.ParseAnchorEdge(pos[2])
	if err != nil {
		return err
	}
	idb, err := parseCurveID(pos[3])
	if err != nil {
		return err
	}
	eb, err := curvenet.ParseAnchorEdge(pos[4])
	if err != nil {
		return err
	}
	s, meta, err := a.load(pos[0])
	if err != nil {
		return err
	}

	if _, move := opts["--move"]; move {
		// Bring the first edge onto the second before joining them.
		partner := curvenet.EdgeRef{Curve: idb, Edge: eb}
		if err := s.SetPendingLatch(ida, ea, partner); err != nil {
			return err
		}
		err = s.CommitPendingLatch(ida)
	} else {
		err = s.Latch(ida, ea, idb, eb)
	}
	if err != nil {
		return err
	}
	if err := a.save(pos[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Latched %s:%s to %s:%s\n", ida, ea, idb, eb)
	return nil
}

func (a *app) cmdUnlatch(args []string) error {
	if len(args) != 3 {
		return usageError("unlatch <file> <curve> <edge>")
	}
	id, err := parseCurveID(args[1])
	if err != nil {
		return err
	}
	e, err := curvenet.ParseAnchorEdge(args[2])
	if err != nil {
		return err
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	if err := s.Unlatch(id, e); err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Unlatched %s:%s\n", id, e)
	return nil
}

func (a *app) cmdSnap(args []string) error {
	pos, opts := splitArgs(args, "-r", "--radius")
	if len(pos) != 3 {
		return usageError("snap <file> <curve> <edge> [-r radius]")
	}
	id, err := parseCurveID(pos[1])
	if err != nil {
		return err
	}
	e, err := curvenet.ParseAnchorEdge(pos[2])
	if err != nil {
		return err
	}
	s, meta, err := a.load(pos[0])
	if err != nil {
		return err
	}
	radius := s.Config().SnapRadius
	if v, ok := option(opts, "-r", "--radius"); ok {
		if radius, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid radius %q", v)
		}
	}

	target, ok := s.FindSnapTarget(id, e, radius)
	if !ok {
		return fmt.Errorf("no free edge within %g of %s:%s", radius, id, e)
	}
	if err := s.SetPendingLatch(id, e, target); err != nil {
		return err
	}
	if err := s.CommitPendingLatch(id); err != nil {
		return err
	}
	if err := a.save(pos[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Latched %s:%s to %s\n", id, e, target)
	return nil
}

func (a *app) cmdGroup(args []string) error {
	if len(args) < 2 {
		return usageError("group <file> <curve>...")
	}
	ids := make([]curvenet.CurveID, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := parseCurveID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	gid, err := s.NewGroup(ids...)
	if err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	g, _ := s.Group(gid)
	fmt.Fprintf(a.out, "Created %s: %s, length %.3f\n", gid, *g.Ends, g.Total)
	return nil
}

func (a *app) cmdUngroup(args []string) error {
	if len(args) != 2 {
		return usageError("ungroup <file> <group>")
	}
	gid, err := parseGroupID(args[1])
	if err != nil {
		return err
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	if err := s.Ungroup(gid); err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", gid)
	return nil
}

func (a *app) cmdImport(args []string) error {
	if len(args) != 2 {
		return usageError("import <file> <group.json>")
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	save, err := curvefile.ParseGroupJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	s, meta, err := a.load(args[0])
	if err != nil {
		return err
	}
	gid, remap, err := s.ImportGroup(save)
	if err != nil {
		return err
	}
	if err := a.save(args[0], s, meta); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %s with %d curves\n", gid, len(remap))
	return nil
}

func (a *app) cmdInfo(args []string) error {
	if len(args) != 1 {
		return usageError("info <file>")
	}
	s, n, err := a.load(args[0])
	if err != nil {
		return err
	}

	latches := 0
	for _, c := range s.Curves() {
		for _, l := range c.Latches {
			if l != nil {
				latches++
			}
		}
	}

	if n.Name != "" {
		fmt.Fprintf(a.out, "Name:        %s\n", n.Name)
	}
	if n.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", n.Description)
	}
	fmt.Fprintf(a.out, "Curves:      %d\n", s.Len())
	fmt.Fprintf(a.out, "Latches:     %d\n", latches/2)
	fmt.Fprintf(a.out, "Groups:      %d\n", len(s.GroupIDs()))

	accuracy := s.Config().ArclenAccuracy
	if s.Len() > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Curves:")
	}
	for _, c := range s.Curves() {
		fmt.Fprintf(a.out, "  %-5s %-16s length %9.3f  start %-10s end %s\n",
			c.ID, c.Name, c.Length(accuracy), latchString(c, curvenet.Start), latchString(c, curvenet.End))
	}

	if len(s.GroupIDs()) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Groups:")
	}
	for _, g := range s.Groups() {
		fmt.Fprintf(a.out, "  %-5s %-6s members %v", g.ID, groupKind(g), g.Members)
		if g.Connected() {
			fmt.Fprintf(a.out, "  length %.3f (polyline %.3f)  ends %s\n", g.Total, g.Standalone.PolylineLength(), *g.Ends)
		} else {
			fmt.Fprintf(a.out, "  %v\n", g.Err)
		}
	}
	return nil
}

func latchString(c *curvenet.Curve, e curvenet.AnchorEdge) string {
	if l := c.LatchAt(e); l != nil {
		return l.Partner().String()
	}
	return "-"
}

func groupKind(g *curvenet.Group) string {
	switch {
	case !g.Connected():
		return "broken"
	case g.Closed():
		return "ring"
	}
	return "open"
}

func (a *app) cmdValidate(args []string) error {
	pos, opts := splitArgs(args)
	if len(pos) != 1 {
		return usageError("validate <file> [--strict]")
	}
	s, _, err := a.load(pos[0])
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%s: invalid:\n%w", pos[0], err)
	}

	broken := 0
	for _, g := range s.Groups() {
		if !g.Connected() {
			broken++
			fmt.Fprintf(a.out, "%s: %s does not form a chain: %v\n", pos[0], g.ID, g.Err)
		}
	}
	if _, strict := opts["--strict"]; strict && broken > 0 {
		return fmt.Errorf("%s: %d broken groups", pos[0], broken)
	}
	fmt.Fprintf(a.out, "%s: valid network with %d curves, %d groups\n", pos[0], s.Len(), len(s.GroupIDs()))
	return nil
}

func (a *app) cmdConvert(args []string) error {
	pos, opts := splitArgs(args, "-o", "--output", "-g", "--group")
	if len(pos) != 1 {
		return usageError("convert <input> [-o output] [--pretty] [--no-labels] [-g group]")
	}
	input := pos[0]
	output, _ := option(opts, "-o", "--output")
	_, pretty := opts["--pretty"]
	_, noLabels := opts["--no-labels"]

	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)

	// Group export
	if g, ok := option(opts, "-g", "--group"); ok {
		gid, err := parseGroupID(g)
		if err != nil {
			return err
		}
		s, _, err := a.load(input)
		if err != nil {
			return err
		}
		save, err := s.ExportGroup(gid)
		if err != nil {
			return err
		}
		data, err := curvefile.GroupToJSON(save, pretty)
		if err != nil {
			return err
		}
		if output == "" {
			output = base + "." + gid.String() + ".json"
		}
		return a.writeOutput(output, data)
	}

	// Load input
	n, err := curvefile.LoadFile(input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", input, err)
	}

	// Determine output format
	if output == "" {
		switch ext {
		case ".json":
			output = base + ".cnet"
		default:
			output = base + ".json"
		}
	}

	switch filepath.Ext(output) {
	case ".json":
		data, err := curvefile.NetworkToJSON(n, pretty)
		if err != nil {
			return err
		}
		err = os.WriteFile(output, data, 0o644)
		if err != nil {
			return err
		}
	default:
		if err := curvefile.WriteNetworkFile(output, n, !noLabels); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Written: %s\n", output)
	return nil
}

func (a *app) cmdDot(args []string) error {
	pos, opts := splitArgs(args, "-o", "--output", "-t", "--title")
	if len(pos) != 1 {
		return usageError("dot <file> [-o output] [-t title]")
	}
	s, n, err := a.load(pos[0])
	if err != nil {
		return err
	}
	title, ok := option(opts, "-t", "--title")
	if !ok {
		title = n.Name
	}
	output, _ := option(opts, "-o", "--output")
	return a.writeOutput(output, []byte(curvefile.GenerateDOT(s, title)))
}

func (a *app) cmdSVG(args []string) error {
	pos, opts := splitArgs(args, "-o", "--output", "-t", "--title", "--width", "--height", "--normals")
	if len(pos) != 1 {
		return usageError("svg <file> [-o output] [-t title] [--width W] [--height H] [--normals N] [--no-controls] [--no-labels]")
	}
	s, n, err := a.load(pos[0])
	if err != nil {
		return err
	}

	o := curvefile.DefaultSVGOptions()
	o.Title = n.Name
	if t, ok := option(opts, "-t", "--title"); ok {
		o.Title = t
	}
	if o.Width, err = intOption(opts, o.Width, "--width"); err != nil {
		return err
	}
	if o.Height, err = intOption(opts, o.Height, "--height"); err != nil {
		return err
	}
	if o.Normals, err = intOption(opts, o.Normals, "--normals"); err != nil {
		return err
	}
	if _, ok := opts["--no-controls"]; ok {
		o.ShowControls = false
	}
	if _, ok := opts["--no-labels"]; ok {
		o.ShowLabels = false
	}

	output, ok := option(opts, "-o", "--output")
	if !ok {
		output = strings.TrimSuffix(pos[0], filepath.Ext(pos[0])) + ".svg"
	}
	if output == "-" {
		output = ""
	}
	return a.writeOutput(output, []byte(curvefile.GenerateSVG(s, o)))
}

func (a *app) cmdPNG(args []string) error {
	pos, opts := splitArgs(args, "-o", "--output", "-t", "--title", "--width", "--height")
	if len(pos) != 1 {
		return usageError("png <file> [-o output] [-t title] [--width W] [--height H] [--no-controls] [--no-labels]")
	}
	s, n, err := a.load(pos[0])
	if err != nil {
		return err
	}

	o := curvefile.DefaultPNGOptions()
	o.Title = n.Name
	if t, ok := option(opts, "-t", "--title"); ok {
		o.Title = t
	}
	if o.Width, err = intOption(opts, o.Width, "--width"); err != nil {
		return err
	}
	if o.Height, err = intOption(opts, o.Height, "--height"); err != nil {
		return err
	}
	if _, ok := opts["--no-controls"]; ok {
		o.ShowControls = false
	}
	if _, ok := opts["--no-labels"]; ok {
		o.ShowLabels = false
	}

	output, ok := option(opts, "-o", "--output")
	if !ok {
		output = strings.TrimSuffix(pos[0], filepath.Ext(pos[0])) + ".png"
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := curvefile.RenderPNG(s, f, o); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Written: %s\n", output)
	return nil
}

// loadGroup loads path and resolves the group named by arg.
func (a *app) loadGroup(path, arg string) (*curvenet.Store, *curvenet.Group, error) {
	gid, err := parseGroupID(arg)
	if err != nil {
		return nil, nil, err
	}
	s, _, err := a.load(path)
	if err != nil {
		return nil, nil, err
	}
	g, ok := s.Group(gid)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", curvenet.ErrGroupNotFound, gid)
	}
	return s, g, nil
}

func (a *app) cmdSample(args []string) error {
	pos, opts := splitArgs(args, "-n", "--count")
	if len(pos) < 2 {
		return usageError("sample <file> <group> [-n count] [--standalone] [t...]")
	}
	_, g, err := a.loadGroup(pos[0], pos[1])
	if err != nil {
		return err
	}
	if !g.Connected() {
		return fmt.Errorf("%s: %w", g.ID, g.Err)
	}

	ts, err := parseFloats(pos[2:])
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		count, err := intOption(opts, 11, "-n", "--count")
		if err != nil {
			return err
		}
		if count < 2 {
			return fmt.Errorf("count must be at least 2, got %d", count)
		}
		for i := range count {
			ts = append(ts, float64(i)/float64(count-1))
		}
	}

	// The standalone table is what generated code reads; t is clamped.
	if _, ok := opts["--standalone"]; ok {
		fmt.Fprintf(a.out, "# %d samples, polyline length %.3f of %.3f\n",
			len(g.Standalone.Samples), g.Standalone.PolylineLength(), g.Standalone.PathLength)
		fmt.Fprintln(a.out, "# t\tx\ty")
		for _, t := range ts {
			p := g.Standalone.At(float32(t))
			fmt.Fprintf(a.out, "%.6g\t%.6f\t%.6f\n", t, p.X, p.Y)
		}
		return nil
	}

	fmt.Fprintln(a.out, "# t\tx\ty\tnx\tny")
	for _, t := range ts {
		p, err := g.Position(t)
		if err != nil {
			return err
		}
		nv, err := g.Normal(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%.6g\t%.6f\t%.6f\t%.6f\t%.6f\n", t, p.X, p.Y, nv.X, nv.Y)
	}
	return nil
}

func (a *app) cmdProbe(args []string) error {
	if len(args) != 2 {
		return usageError("probe <file> <group>")
	}
	_, g, err := a.loadGroup(args[0], args[1])
	if err != nil {
		return err
	}
	if !g.Connected() {
		return fmt.Errorf("%s: %w", g.ID, g.Err)
	}

	fmt.Fprintf(a.out, "Group: %s (%s, length %.3f)\n", g.ID, groupKind(g), g.Total)
	fmt.Fprintln(a.out, "Commands: <t>, offset <t> <distance>, segments, quit")
	fmt.Fprintln(a.out)

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "segments":
			for i, seg := range g.Chain {
				dir := "forward"
				if seg.Reversed() {
					dir = "reversed"
				}
				fmt.Fprintf(a.out, "  %d: %s [%.6f, %.6f] %s\n", i, seg.Curve, seg.TMin, seg.TMax, dir)
			}
		case "offset":
			if len(fields) != 3 {
				fmt.Fprintln(a.out, "Usage: offset <t> <distance>")
				continue
			}
			v, err := parseFloats(fields[1:])
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
				continue
			}
			p, err := g.Offset(v[0], v[1])
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(a.out, "(%.6f, %.6f)\n", p.X, p.Y)
		default:
			t, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				fmt.Fprintf(a.out, "Unknown command: %s\n", fields[0])
				continue
			}
			a.printProbe(g, t)
		}
	}
	return scanner.Err()
}

func (a *app) printProbe(g *curvenet.Group, t float64) {
	i, local, err := g.Locate(t)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	p, _ := g.Position(t)
	n, _ := g.Normal(t)
	tan, _ := g.Tangent(t)
	fmt.Fprintf(a.out, "t=%.6f  %s@%.6f  pos (%.6f, %.6f)  normal (%.6f, %.6f)  tangent (%.6f, %.6f)\n",
		t, g.Chain[i].Curve, local, p.X, p.Y, n.X, n.Y, tan.X, tan.Y)
}

func (a *app) cmdGen(args []string) error {
	pos, opts := splitArgs(args, "-l", "--lang", "-p", "--package", "-n", "--name", "-o", "--output")
	if len(pos) != 2 {
		return usageError("gen <file> <group> [-l go|tinygo|c|rust] [-p package] [-n name] [-o output]")
	}
	_, g, err := a.loadGroup(pos[0], pos[1])
	if err != nil {
		return err
	}
	name, _ := option(opts, "-n", "--name")
	p, err := codegen.FromGroup(g, name)
	if err != nil {
		return err
	}

	pkg, ok := option(opts, "-p", "--package")
	if !ok {
		pkg = "paths"
	}
	lang, ok := option(opts, "-l", "--lang")
	if !ok {
		lang = "go"
	}

	var src string
	switch strings.ToLower(lang) {
	case "go":
		src = codegen.GenerateGo(p, pkg)
	case "tinygo":
		src = codegen.GenerateTinyGo(p, pkg)
	case "c":
		src = codegen.GenerateC(p)
	case "rust", "rs":
		src = codegen.GenerateRust(p)
	default:
		return fmt.Errorf("unknown language %q", lang)
	}
	output, _ := option(opts, "-o", "--output")
	return a.writeOutput(output, []byte(src))
}

func (a *app) cmdConfig(args []string) error {
	_, opts := splitArgs(args)
	s := a.settings
	if _, ok := opts["--default"]; ok {
		s = curvefile.DefaultSettings()
	}
	data, err := curvefile.FormatConfig(s)
	if err != nil {
		return err
	}
	_, err = a.out.Write(data)
	return err
}
