package stp

import "sort"

// PortState is the externally visible state of one port.
type PortState struct {
	Handle     PortHandle
	Number     uint16
	Role       Role
	Status     Status
	LinkCost   uint32
	CostToRoot uint32
	HasCost    bool

	PeerBridge string
	PeerPort   uint16
}

// BridgeState is the externally visible state of one bridge. RootID is the
// bridge's own id while it believes it is root.
type BridgeState struct {
	Label  string
	ID     BridgeID
	IsRoot bool
	RootID BridgeID
	Ports  []PortState
}

// Snapshot is the result surface of a simulation.
type Snapshot struct {
	Bridges []BridgeState
}

// Snapshot copies the current state, bridges in processing order and ports
// ordered by number.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{Bridges: make([]BridgeState, 0, len(n.order))}
	for _, id := range n.order {
		br := n.bridges[id]
		bs := BridgeState{
			Label:  br.label,
			ID:     br.id,
			IsRoot: br.isRoot,
			RootID: br.claim.Root,
			Ports:  make([]PortState, 0, len(br.ports)),
		}
		for _, h := range br.ports {
			p := &n.ports[h]
			peer := &n.ports[p.remote]
			cost, ok := p.CostToRoot()
			bs.Ports = append(bs.Ports, PortState{
				Handle:     h,
				Number:     p.number,
				Role:       p.role,
				Status:     p.Status(),
				LinkCost:   p.linkCost,
				CostToRoot: cost,
				HasCost:    ok,
				PeerBridge: n.bridges[peer.owner].label,
				PeerPort:   peer.number,
			})
		}
		sort.Slice(bs.Ports, func(i, j int) bool { return bs.Ports[i].Number < bs.Ports[j].Number })
		s.Bridges = append(s.Bridges, bs)
	}
	return s
}

// Bridge finds a bridge in the snapshot by label
func (s Snapshot) Bridge(label string) (BridgeState, bool) {
	for _, b := range s.Bridges {
		if b.Label == label {
			return b, true
		}
	}
	return BridgeState{}, false
}

// Port finds a port of the bridge by number
func (b BridgeState) Port(number uint16) (PortState, bool) {
	for _, p := range b.Ports {
		if p.Number == number {
			return p, true
		}
	}
	return PortState{}, false
}

// Roots returns the bridges that currently believe they are root
func (s Snapshot) Roots() []BridgeState {
	var out []BridgeState
	for _, b := range s.Bridges {
		if b.IsRoot {
			out = append(out, b)
		}
	}
	return out
}
