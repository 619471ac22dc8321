package curvefile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"github.com/pelletier/go-toml/v2"
)

const (
	archiveNetwork = "network.json"
	archiveLabels  = "labels.toml"
)

// Labels represents the labels.toml content.
type Labels struct {
	Network NetworkMeta       `toml:"network"`
	Curves  map[string]string `toml:"curves,omitempty"`
}

// NetworkMeta contains network metadata.
type NetworkMeta struct {
	Version     int    `toml:"version"`
	Name        string `toml:"name,omitempty"`
	Description string `toml:"description,omitempty"`
}

// GenerateLabels creates labels.toml content. Curves are keyed by their
// external id.
func GenerateLabels(n *Network) ([]byte, error) {
	l := Labels{
		Network: NetworkMeta{Version: version, Name: n.Name, Description: n.Description},
		Curves:  make(map[string]string),
	}
	for _, cs := range n.Save.Curves {
		if cs.Name != "" {
			l.Curves[strconv.FormatUint(cs.ID, 10)] = cs.Name
		}
	}
	return toml.Marshal(l)
}

// ParseLabels parses labels.toml content.
func ParseLabels(data []byte) (*Labels, error) {
	var l Labels
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("labels.toml: %w", err)
	}
	return &l, nil
}

// apply copies metadata and curve names onto n. Keys that are not curve
// ids of n are ignored.
func (l *Labels) apply(n *Network) error {
	if l.Network.Name != "" {
		n.Name = l.Network.Name
	}
	if l.Network.Description != "" {
		n.Description = l.Network.Description
	}
	for key, name := range l.Curves {
		id, err := strconv.ParseUint(strings.TrimSpace(key), 0, 64)
		if err != nil {
			return fmt.Errorf("labels.toml: bad curve key %q", key)
		}
		for i := range n.Save.Curves {
			if n.Save.Curves[i].ID == id {
				n.Save.Curves[i].Name = name
			}
		}
	}
	return nil
}

// WriteNetworkFile writes a network to a .cnet file.
func WriteNetworkFile(path string, n *Network, includeLabels bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteNetwork(file, n, includeLabels); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteNetwork writes a network to a writer in .cnet format. With labels
// included, names and metadata live in labels.toml rather than network.json.
func WriteNetwork(w io.Writer, n *Network, includeLabels bool) error {
	zw := zip.NewWriter(w)

	body := n
	if includeLabels {
		stripped := *n
		stripped.Name, stripped.Description = "", ""
		stripped.Save.Curves = make([]curvenet.CurveSave, len(n.Save.Curves))
		for i, cs := range n.Save.Curves {
			cs.Name = ""
			stripped.Save.Curves[i] = cs
		}
		body = &stripped
	}

	data, err := NetworkToJSON(body, true)
	if err != nil {
		return err
	}
	nw, err := zw.Create(archiveNetwork)
	if err != nil {
		return err
	}
	if _, err := nw.Write(data); err != nil {
		return err
	}

	if includeLabels {
		labels, err := GenerateLabels(n)
		if err != nil {
			return err
		}
		lw, err := zw.Create(archiveLabels)
		if err != nil {
			return err
		}
		if _, err := lw.Write(labels); err != nil {
			return err
		}
	}

	return zw.Close()
}

// ReadNetworkFile reads a network from a .cnet file.
func ReadNetworkFile(path string) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return ReadNetwork(file, info.Size())
}

// ReadNetwork reads a network from a reader containing .cnet format.
func ReadNetwork(r io.ReaderAt, size int64) (*Network, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	var body, labels []byte
	for _, f := range zr.File {
		switch f.Name {
		case archiveNetwork, archiveLabels:
		default:
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if f.Name == archiveNetwork {
			body = data
		} else {
			labels = data
		}
	}

	if body == nil {
		return nil, fmt.Errorf("%s not found in archive", archiveNetwork)
	}
	n, err := ParseNetworkJSON(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archiveNetwork, err)
	}
	if labels != nil {
		l, err := ParseLabels(labels)
		if err != nil {
			return nil, err
		}
		if err := l.apply(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// ReadNetworkBytes reads a network from bytes in .cnet format.
func ReadNetworkBytes(data []byte) (*Network, error) {
	return ReadNetwork(bytes.NewReader(data), int64(len(data)))
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// LoadFile reads a network from a .json or .cnet file, chosen by extension.
func LoadFile(path string) (*Network, error) {
	if !isJSON(path) {
		return ReadNetworkFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseNetworkJSON(data)
}

// SaveFile writes a network as .json or .cnet, chosen by extension.
func SaveFile(path string, n *Network) error {
	if !isJSON(path) {
		return WriteNetworkFile(path, n, true)
	}
	data, err := NetworkToJSON(n, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadStore reads a network file into a new store. Curves and groups keep
// the ids they were saved with. The returned map translates the file's
// curve ids to store ids.
func LoadStore(path string, cfg curvenet.Config, logger *slog.Logger) (*curvenet.Store, *Network, map[uint64]curvenet.CurveID, error) {
	n, err := LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	s := curvenet.NewStore(cfg, logger)
	remap, err := s.ImportNetwork(n.Save, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, n, remap, nil
}

// SaveStore writes the store to path. Name and description are taken from
// meta, which may be nil.
func SaveStore(path string, s *curvenet.Store, meta *Network) error {
	n := &Network{Save: s.ExportNetwork()}
	if meta != nil {
		n.Name, n.Description = meta.Name, meta.Description
	}
	return SaveFile(path, n)
}
