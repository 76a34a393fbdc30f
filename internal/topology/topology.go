// Package topology reads bridge/link descriptions and turns them into an
// stp.Network.
package topology

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

// ErrInvalidTopology is returned for descriptions that fail validation
var ErrInvalidTopology = errors.New("invalid topology")

// Node is a bridge record. A nil MAC means stp.DefaultMAC.
type Node struct {
	Label    string
	MAC      net.HardwareAddr
	Priority uint16
}

// ID returns the bridge id the node maps to
func (n Node) ID() (stp.BridgeID, error) {
	return stp.NewBridgeID(n.Priority, n.MAC)
}

// Endpoint names one end of a link
type Endpoint struct {
	Node string
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Node, e.Port)
}

// Link is an undirected link record; Speed is in Mb/s
type Link struct {
	A, B  Endpoint
	Speed uint32
}

// Spec is a parsed topology, independent of the file format it came from
type Spec struct {
	Name  string
	Nodes []Node
	Links []Link
}

// Build validates spec and constructs the network. Nothing is returned
// unless every node and link was accepted.
func Build(spec *Spec) (*stp.Network, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: no topology", ErrInvalidTopology)
	}

	nw := stp.NewNetwork()
	bridges := make(map[string]*stp.Bridge, len(spec.Nodes))

	// Create all bridges first
	for i, node := range spec.Nodes {
		if node.Label == "" {
			return nil, fmt.Errorf("%w: node %d has no name", ErrInvalidTopology, i)
		}
		if _, dup := bridges[node.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate node name %s", ErrInvalidTopology, node.Label)
		}

		id, err := node.ID()
		if err != nil {
			return nil, fmt.Errorf("%w: node %s: %v", ErrInvalidTopology, node.Label, err)
		}

		br := nw.GetOrCreate(node.Label, id)
		if br.Label() != node.Label {
			logger.LogWarn("Topology: Node %s has the same bridge id %s as %s, treating them as one bridge",
				node.Label, id, br.Label())
		}
		bridges[node.Label] = br
	}

	// Create links between bridges
	for i, link := range spec.Links {
		a, ok := bridges[link.A.Node]
		if !ok {
			return nil, fmt.Errorf("link %d: %w: unknown node %q", i, stp.ErrMalformedLinkEndpoint, link.A.Node)
		}
		b, ok := bridges[link.B.Node]
		if !ok {
			return nil, fmt.Errorf("link %d: %w: unknown node %q", i, stp.ErrMalformedLinkEndpoint, link.B.Node)
		}
		if err := nw.Connect(a, link.A.Port, b, link.B.Port, link.Speed); err != nil {
			return nil, fmt.Errorf("link %d (%s -- %s): %w", i, link.A, link.B, err)
		}
	}

	logger.LogInfo("Topology: Built %s with %d bridges and %d links",
		spec.displayName(), nw.Len(), len(spec.Links))
	return nw, nil
}

func (s *Spec) displayName() string {
	if s.Name == "" {
		return "unnamed topology"
	}
	return s.Name
}

// Format identifies a topology file format
type Format int

const (
	FormatYAML Format = iota
	FormatDOT
)

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".dot", ".gv":
		return FormatDOT, nil
	}
	return 0, fmt.Errorf("%w: unknown topology file type %q", ErrInvalidTopology, filepath.Ext(path))
}

// Parse decodes data in the given format
func Parse(data []byte, format Format) (*Spec, error) {
	switch format {
	case FormatDOT:
		return ParseDOT(data)
	default:
		return ParseYAML(data)
	}
}

// Load reads, parses and builds the topology at path
func Load(path string) (*Spec, *stp.Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read topology file %s: %w", path, err)
	}

	spec, err := Parse(data, format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse topology %s: %w", path, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	nw, err := Build(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build network from %s: %w", path, err)
	}
	return spec, nw, nil
}

// parsePriority and parseMAC share the defaults of both formats
func parsePriority(v int, set bool) (uint16, error) {
	if !set {
		return stp.DefaultPriority, nil
	}
	if v < 0 || v > 0xffff {
		return 0, fmt.Errorf("%w: priority %d out of range", ErrInvalidTopology, v)
	}
	return uint16(v), nil
}

func parseMAC(s string) (net.HardwareAddr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("%w: MAC %s is not 48 bits", ErrInvalidTopology, s)
	}
	return mac, nil
}

func parsePort(v int) (uint16, error) {
	if v < 0 || v > 0xffff {
		return 0, fmt.Errorf("%w: port %d out of range", stp.ErrMalformedLinkEndpoint, v)
	}
	return uint16(v), nil
}

func parseSpeed(v int) (uint32, error) {
	if v < 0 || v > int(^uint32(0)) {
		return 0, fmt.Errorf("%w: %d", stp.ErrInvalidLinkSpeed, v)
	}
	return uint32(v), nil
}
