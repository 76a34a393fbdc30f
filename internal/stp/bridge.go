package stp

// fabric is what a bridge sees of the world during a round: the BPDU each
// of its ports has learned, and a way to advertise out of a port.
type fabric interface {
	learned(h PortHandle) (BPDU, bool)
	push(h PortHandle, b BPDU)
}

// Bridge is a node of the bridged LAN.
type Bridge struct {
	label string
	id    BridgeID
	ports []PortHandle

	isRoot bool
	claim  BPDU
}

// Label returns the name given by the topology
func (b *Bridge) Label() string { return b.label }

// ID returns the bridge id
func (b *Bridge) ID() BridgeID { return b.id }

// Ports returns the port handles in the order the links were connected
func (b *Bridge) Ports() []PortHandle {
	out := make([]PortHandle, len(b.ports))
	copy(out, b.ports)
	return out
}

// IsRoot reports whether the bridge currently believes it is the root
func (b *Bridge) IsRoot() bool { return b.isRoot }

// Claim returns the winning BPDU of the last round
func (b *Bridge) Claim() BPDU { return b.claim }

// RootID returns the root the bridge currently believes in
func (b *Bridge) RootID() BridgeID { return b.claim.Root }

func (b *Bridge) boot(arena []Port) {
	b.isRoot = true
	b.claim = selfClaim(b.id)
	for _, h := range b.ports {
		arena[h].Reset()
	}
}

// process runs one round of the election for this bridge. It only writes
// the bridge's own fields and the role and cost of its own ports; learned
// state changes only through f.
func (b *Bridge) process(arena []Port, f fabric) {
	win := selfClaim(b.id)
	rootPort := PortHandle(-1)

	for _, h := range b.ports {
		l, ok := f.learned(h)
		if !ok {
			continue
		}
		p := &arena[h]
		cand := BPDU{
			Root:       l.Root,
			Cost:       l.Cost + p.linkCost,
			SenderID:   b.id,
			SenderPort: p.number,
		}
		if Better(win, cand) != win {
			win = cand
			rootPort = h
		}
	}

	b.claim = win
	b.isRoot = win.Root == b.id

	if b.isRoot {
		for _, h := range b.ports {
			p := &arena[h]
			adv := win
			adv.SenderPort = p.number
			p.AssignRole(RoleDesignated)
			p.clearCost()
			f.push(h, adv)
		}
		return
	}

	for _, h := range b.ports {
		p := &arena[h]
		adv := win
		adv.SenderPort = p.number

		l, ok := f.learned(h)
		switch {
		case !ok || Better(adv, l) == adv:
			p.AssignRole(RoleDesignated)
			p.clearCost()
			f.push(h, adv)
		case h == rootPort:
			p.AssignRole(RoleRoot)
			p.setCost(win.Cost)
		default:
			p.AssignRole(RoleUndesignated)
			p.clearCost()
		}
	}
}
