package stp

import "fmt"

// Role is the spanning-tree role of a port.
type Role uint8

const (
	RoleUndesignated Role = iota
	RoleRoot
	RoleDesignated
)

func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "Root Port"
	case RoleDesignated:
		return "Designated"
	case RoleUndesignated:
		return "Undesignated"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Status is the forwarding state that follows from a Role.
type Status uint8

const (
	StatusBlocked Status = iota
	StatusForwarding
)

func (s Status) String() string {
	if s == StatusForwarding {
		return "Forwarding"
	}
	return "Blocked"
}

// Status maps the role to its forwarding state. Root and Designated ports
// forward, everything else is blocked.
func (r Role) Status() Status {
	switch r {
	case RoleRoot, RoleDesignated:
		return StatusForwarding
	}
	return StatusBlocked
}

// PortHandle indexes a port in its network's port arena.
type PortHandle int

// Port is one end of a link. Ports never point at each other directly; the
// remote end is a handle into the same arena.
type Port struct {
	owner    BridgeID
	number   uint16
	linkCost uint32
	remote   PortHandle

	learned    BPDU
	hasLearned bool
	role       Role
	costToRoot uint32
	hasCost    bool
}

// Owner returns the id of the bridge the port belongs to
func (p *Port) Owner() BridgeID { return p.owner }

// Number returns the bridge-local port number
func (p *Port) Number() uint16 { return p.number }

// LinkCost returns the cost of the attached link
func (p *Port) LinkCost() uint32 { return p.linkCost }

// Remote returns the handle of the paired port
func (p *Port) Remote() PortHandle { return p.remote }

// Learned returns the best BPDU seen on this port, if any
func (p *Port) Learned() (BPDU, bool) { return p.learned, p.hasLearned }

// Role returns the current role
func (p *Port) Role() Role { return p.role }

// Status is always derived from the role
func (p *Port) Status() Status { return p.role.Status() }

// CostToRoot is set only while the port is the bridge's root port
func (p *Port) CostToRoot() (uint32, bool) { return p.costToRoot, p.hasCost }

// Reset clears all learned state. Only Boot calls it.
func (p *Port) Reset() {
	p.learned = BPDU{}
	p.hasLearned = false
	p.clearCost()
	p.AssignRole(RoleUndesignated)
}

// Receive merges b into the learned BPDU without forwarding it.
func (p *Port) Receive(b BPDU) {
	p.learned = merge(p.learned, p.hasLearned, b)
	p.hasLearned = true
}

// AssignRole sets the role; the status follows from it.
func (p *Port) AssignRole(r Role) {
	p.role = r
}

func (p *Port) setCost(c uint32) {
	p.costToRoot = c
	p.hasCost = true
}

func (p *Port) clearCost() {
	p.costToRoot = 0
	p.hasCost = false
}

// portState is the part of a port that changes while the simulation runs.
type portState struct {
	learned    BPDU
	hasLearned bool
	role       Role
	costToRoot uint32
	hasCost    bool
}

func (p *Port) state() portState {
	return portState{
		learned:    p.learned,
		hasLearned: p.hasLearned,
		role:       p.role,
		costToRoot: p.costToRoot,
		hasCost:    p.hasCost,
	}
}
