package topology

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

// ParseDOT decodes a Graphviz graph describing a bridged LAN:
//
//	graph lan {
//	    A [mac="00:00:00:00:00:01", priority=4096];
//	    B;
//	    "A:1" -- "B:1" [speed=1000];
//	}
//
// Nodes carry mac and priority attributes, edges join node:port endpoints
// and carry a speed in Mb/s. Other attributes are ignored; subgraphs are
// rejected.
func ParseDOT(data []byte) (*Spec, error) {
	ast, err := gographviz.Parse(stripHashLines(data))
	if err != nil {
		return nil, fmt.Errorf("%w: DOT: %v", ErrInvalidTopology, err)
	}

	b := newDOTBuilder()
	if err := gographviz.Analyse(ast, b); err != nil {
		if b.err != nil {
			return nil, b.err
		}
		return nil, fmt.Errorf("%w: DOT: %v", ErrInvalidTopology, err)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.spec, nil
}

// stripHashLines drops C preprocessor style lines, which DOT treats as
// comments.
func stripHashLines(data []byte) []byte {
	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			out.WriteByte('\n')
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes()
}

// dotBuilder receives the analysed graph and maps it onto a Spec. It keeps
// the first error itself so sentinel wrapping survives Analyse.
type dotBuilder struct {
	spec  *Spec
	nodes map[string]int
	err   error
}

var _ gographviz.Interface = (*dotBuilder)(nil)

func newDOTBuilder() *dotBuilder {
	return &dotBuilder{spec: &Spec{}, nodes: map[string]int{}}
}

func (b *dotBuilder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

func (b *dotBuilder) SetStrict(strict bool) error { return nil }

func (b *dotBuilder) SetDir(directed bool) error { return nil }

func (b *dotBuilder) SetName(name string) error {
	b.spec.Name = unquote(name)
	return nil
}

// AddAttr receives graph attributes such as rankdir, which only affect
// rendering
func (b *dotBuilder) AddAttr(parentGraph string, field, value string) error { return nil }

func (b *dotBuilder) AddSubGraph(parentGraph string, name string, attrs map[string]string) error {
	return b.fail(fmt.Errorf("%w: DOT: subgraphs are not supported", ErrInvalidTopology))
}

// AddNode is called for node statements and for nodes first seen in an
// edge. An endpoint literal such as "A:1" names node A.
func (b *dotBuilder) AddNode(parentGraph string, name string, attrs map[string]string) error {
	label := unquote(name)
	if i := strings.LastIndex(label, ":"); i >= 0 {
		label = label[:i]
	}
	if err := b.addNode(label, lowerKeys(attrs)); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *dotBuilder) AddEdge(src, dst string, directed bool, attrs map[string]string) error {
	return b.AddPortEdge(src, "", dst, "", directed, attrs)
}

func (b *dotBuilder) AddPortEdge(src, srcPort, dst, dstPort string, directed bool, attrs map[string]string) error {
	attrs = lowerKeys(attrs)

	a, err := dotEndpoint(src, srcPort)
	if err != nil {
		return b.fail(err)
	}
	z, err := dotEndpoint(dst, dstPort)
	if err != nil {
		return b.fail(err)
	}

	speed, err := attrInt(attrs, "speed")
	if err != nil {
		return b.fail(err)
	}
	sp, err := parseSpeed(speed)
	if err != nil {
		return b.fail(err)
	}

	b.spec.Links = append(b.spec.Links, Link{A: a, B: z, Speed: sp})
	return nil
}

func (b *dotBuilder) String() string {
	return fmt.Sprintf("%s: %d nodes, %d links", b.spec.Name, len(b.spec.Nodes), len(b.spec.Links))
}

// dotEndpoint resolves node:port, taken either from a quoted "node:port"
// id or from the DOT port syntax node:port
func dotEndpoint(name, port string) (Endpoint, error) {
	node := unquote(name)
	port = unquote(strings.TrimPrefix(port, ":"))

	if port != "" {
		node = strings.TrimSuffix(node, ":"+port)
	} else if i := strings.LastIndex(node, ":"); i >= 0 {
		node, port = node[:i], node[i+1:]
	} else {
		return Endpoint{}, fmt.Errorf("%w: %q has no port, want node:port", stp.ErrMalformedLinkEndpoint, node)
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: port %q of %s is not a number", stp.ErrMalformedLinkEndpoint, port, node)
	}
	p, err := parsePort(n)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Node: node, Port: p}, nil
}

func (b *dotBuilder) addNode(label string, attrs map[string]string) error {
	mac, err := parseMAC(attrs["mac"])
	if err != nil {
		return fmt.Errorf("node %s: %w", label, err)
	}
	prio, err := attrInt(attrs, "priority")
	if err != nil {
		return fmt.Errorf("node %s: %w", label, err)
	}
	_, set := attrs["priority"]
	priority, err := parsePriority(prio, set)
	if err != nil {
		return fmt.Errorf("node %s: %w", label, err)
	}

	node := Node{Label: label, MAC: mac, Priority: priority}

	// a node may be declared more than once; later attributes win
	if i, ok := b.nodes[label]; ok {
		prev := b.spec.Nodes[i]
		if _, ok := attrs["mac"]; !ok {
			node.MAC = prev.MAC
		}
		if !set {
			node.Priority = prev.Priority
		}
		b.spec.Nodes[i] = node
		return nil
	}
	b.nodes[label] = len(b.spec.Nodes)
	b.spec.Nodes = append(b.spec.Nodes, node)
	return nil
}

func attrInt(attrs map[string]string, key string) (int, error) {
	v, ok := attrs[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: attribute %s=%q is not a number", ErrInvalidTopology, key, v)
	}
	return n, nil
}

// lowerKeys copies attrs with lower-case keys and unquoted values
func lowerKeys(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[strings.ToLower(unquote(k))] = unquote(v)
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
