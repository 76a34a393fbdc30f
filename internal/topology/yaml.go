package topology

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// YAML topology configuration structures
type TopologyConfig struct {
	Topology TopologyInfo `yaml:"topology"`
	Nodes    []NodeConfig `yaml:"nodes"`
	Links    []LinkConfig `yaml:"links"`
}

type TopologyInfo struct {
	Name string `yaml:"name"`
}

type NodeConfig struct {
	Name     string `yaml:"name"`
	MAC      string `yaml:"mac"`      // optional, defaults to ff:ff:ff:ff:ff:ff
	Priority *int   `yaml:"priority"` // optional, defaults to 32768
}

type LinkConfig struct {
	FromNode string `yaml:"from_node"`
	FromPort int    `yaml:"from_port"`
	ToNode   string `yaml:"to_node"`
	ToPort   int    `yaml:"to_port"`
	Speed    int    `yaml:"speed"` // Mb/s: 10, 100, 1000 or 10000
}

// ParseYAML decodes a YAML topology
func ParseYAML(data []byte) (*Spec, error) {
	var config TopologyConfig
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML topology: %v", ErrInvalidTopology, err)
	}

	if err := validateTopologyConfig(&config); err != nil {
		return nil, fmt.Errorf("topology validation failed: %w", err)
	}

	return config.toSpec()
}

// validateTopologyConfig performs basic validation on the topology configuration
func validateTopologyConfig(config *TopologyConfig) error {
	if len(config.Nodes) == 0 {
		return fmt.Errorf("%w: at least one node is required", ErrInvalidTopology)
	}

	for i, link := range config.Links {
		if link.FromNode == "" || link.ToNode == "" {
			return fmt.Errorf("%w: link %d: from_node and to_node are required", ErrInvalidTopology, i)
		}
	}
	return nil
}

func (config *TopologyConfig) toSpec() (*Spec, error) {
	spec := &Spec{Name: config.Topology.Name}

	for _, nc := range config.Nodes {
		mac, err := parseMAC(nc.MAC)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nc.Name, err)
		}

		var prio int
		if nc.Priority != nil {
			prio = *nc.Priority
		}
		priority, err := parsePriority(prio, nc.Priority != nil)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nc.Name, err)
		}

		spec.Nodes = append(spec.Nodes, Node{Label: nc.Name, MAC: mac, Priority: priority})
	}

	for i, lc := range config.Links {
		fromPort, err := parsePort(lc.FromPort)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		toPort, err := parsePort(lc.ToPort)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		speed, err := parseSpeed(lc.Speed)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}

		spec.Links = append(spec.Links, Link{
			A:     Endpoint{Node: lc.FromNode, Port: fromPort},
			B:     Endpoint{Node: lc.ToNode, Port: toPort},
			Speed: speed,
		})
	}

	return spec, nil
}
