package stp

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidLinkSpeed is returned for a speed missing from the cost table
	ErrInvalidLinkSpeed = errors.New("invalid link speed")

	// ErrMalformedLinkEndpoint is returned when a link end cannot be resolved
	// to a usable bridge port
	ErrMalformedLinkEndpoint = errors.New("malformed link endpoint")
)

// speed in Mb/s -> 802.1D path cost
var speedCosts = map[uint32]uint32{
	10:    100,
	100:   19,
	1000:  4,
	10000: 2,
}

// LinkCost returns the path cost for a link speed in Mb/s
func LinkCost(speed uint32) (uint32, error) {
	cost, ok := speedCosts[speed]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLinkSpeed, speed)
	}
	return cost, nil
}

// SupportedSpeeds lists the speeds accepted by Connect, ascending
func SupportedSpeeds() []uint32 {
	out := make([]uint32, 0, len(speedCosts))
	for s := range speedCosts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Link is an undirected pair of ports.
type Link struct {
	A, B  PortHandle
	Speed uint32
	Cost  uint32
}

// Network owns the bridges and the port arena of one topology.
type Network struct {
	bridges map[BridgeID]*Bridge
	order   []BridgeID
	ports   []Port
	links   []Link
}

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{bridges: make(map[BridgeID]*Bridge)}
}

// GetOrCreate returns the bridge with the given id, creating it if needed.
// An existing bridge keeps its original label.
func (n *Network) GetOrCreate(label string, id BridgeID) *Bridge {
	if br, ok := n.bridges[id]; ok {
		return br
	}
	br := &Bridge{label: label, id: id, isRoot: true, claim: selfClaim(id)}
	n.bridges[id] = br
	n.order = append(n.order, id)
	return br
}

// Bridge looks a bridge up by id
func (n *Network) Bridge(id BridgeID) (*Bridge, bool) {
	br, ok := n.bridges[id]
	return br, ok
}

// BridgeByLabel looks a bridge up by its label
func (n *Network) BridgeByLabel(label string) (*Bridge, bool) {
	for _, id := range n.order {
		if br := n.bridges[id]; br.label == label {
			return br, true
		}
	}
	return nil, false
}

// Bridges returns all bridges in processing order
func (n *Network) Bridges() []*Bridge {
	out := make([]*Bridge, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.bridges[id])
	}
	return out
}

// Len returns the number of bridges
func (n *Network) Len() int { return len(n.order) }

// Port returns the port behind a handle
func (n *Network) Port(h PortHandle) *Port {
	return &n.ports[h]
}

// PortByNumber finds a port of br by its number
func (n *Network) PortByNumber(br *Bridge, number uint16) (PortHandle, bool) {
	for _, h := range br.ports {
		if n.ports[h].number == number {
			return h, true
		}
	}
	return -1, false
}

// Links returns every link in the order it was connected
func (n *Network) Links() []Link {
	out := make([]Link, len(n.links))
	copy(out, n.links)
	return out
}

// Connect wires port portA of a to port portB of b. Both ends get the cost
// derived from speed. The network is unchanged on error.
func (n *Network) Connect(a *Bridge, portA uint16, b *Bridge, portB uint16, speed uint32) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil bridge", ErrMalformedLinkEndpoint)
	}
	cost, err := LinkCost(speed)
	if err != nil {
		return err
	}
	if _, used := n.PortByNumber(a, portA); used {
		return fmt.Errorf("%w: port %d already in use on %s", ErrMalformedLinkEndpoint, portA, a.label)
	}
	if _, used := n.PortByNumber(b, portB); used {
		return fmt.Errorf("%w: port %d already in use on %s", ErrMalformedLinkEndpoint, portB, b.label)
	}
	if a == b && portA == portB {
		return fmt.Errorf("%w: port %d on %s linked to itself", ErrMalformedLinkEndpoint, portA, a.label)
	}

	ha := PortHandle(len(n.ports))
	hb := ha + 1
	n.ports = append(n.ports,
		Port{owner: a.id, number: portA, linkCost: cost, remote: hb},
		Port{owner: b.id, number: portB, linkCost: cost, remote: ha},
	)
	a.ports = append(a.ports, ha)
	b.ports = append(b.ports, hb)
	n.links = append(n.links, Link{A: ha, B: hb, Speed: speed, Cost: cost})
	return nil
}

// learned and push make the network itself the fabric of the sweep schedule:
// every push lands immediately.
func (n *Network) learned(h PortHandle) (BPDU, bool) {
	return n.ports[h].Learned()
}

func (n *Network) push(h PortHandle, b BPDU) {
	p := &n.ports[h]
	p.Receive(b)
	n.ports[p.remote].Receive(b)
}

type bridgeState struct {
	isRoot bool
	claim  BPDU
}

// netState is a copy of everything a round can change.
type netState struct {
	bridges []bridgeState
	ports   []portState
}

func (n *Network) capture() netState {
	s := netState{
		bridges: make([]bridgeState, len(n.order)),
		ports:   make([]portState, len(n.ports)),
	}
	for i, id := range n.order {
		br := n.bridges[id]
		s.bridges[i] = bridgeState{isRoot: br.isRoot, claim: br.claim}
	}
	for i := range n.ports {
		s.ports[i] = n.ports[i].state()
	}
	return s
}

func (s netState) equal(o netState) bool {
	if len(s.bridges) != len(o.bridges) || len(s.ports) != len(o.ports) {
		return false
	}
	for i := range s.bridges {
		if s.bridges[i] != o.bridges[i] {
			return false
		}
	}
	for i := range s.ports {
		if s.ports[i] != o.ports[i] {
			return false
		}
	}
	return true
}
