package stp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
)

// Schedule selects how bridges exchange BPDUs within a round.
type Schedule int

const (
	// ScheduleSweep visits bridges one after another and every push lands
	// immediately, so later bridges may see this round's advertisements.
	ScheduleSweep Schedule = iota

	// ScheduleBarrier runs all bridges of a round concurrently against a
	// snapshot taken at round start and delivers pushes at the barrier.
	ScheduleBarrier
)

func (s Schedule) String() string {
	switch s {
	case ScheduleSweep:
		return "sweep"
	case ScheduleBarrier:
		return "barrier"
	}
	return fmt.Sprintf("Schedule(%d)", int(s))
}

// ParseSchedule accepts "sweep" or "barrier"
func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sweep", "":
		return ScheduleSweep, nil
	case "barrier":
		return ScheduleBarrier, nil
	}
	return ScheduleSweep, fmt.Errorf("unknown schedule %q (want sweep or barrier)", s)
}

// Option configures a Driver
type Option func(*Driver)

// WithSchedule sets the round schedule
func WithSchedule(s Schedule) Option {
	return func(d *Driver) { d.schedule = s }
}

// WithHook registers a hook at construction
func WithHook(h Hook) Option {
	return func(d *Driver) { d.AcceptHook(h) }
}

// Report summarises a call to Run or Converge.
type Report struct {
	// Rounds executed by this call
	Rounds int
	// Round is the driver's round counter since Boot
	Round int
	// Changed counts rounds that modified any state
	Changed int
	// Converged is set when a round left the state untouched
	Converged bool
}

// Driver boots a network and runs synchronous rounds over it.
type Driver struct {
	*HookableBase

	net      *Network
	schedule Schedule
	round    int
}

// NewDriver creates a driver for net
func NewDriver(net *Network, opts ...Option) *Driver {
	d := &Driver{
		HookableBase: NewHookableBase(),
		net:          net,
		schedule:     ScheduleSweep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Network returns the driven network
func (d *Driver) Network() *Network { return d.net }

// Schedule returns the round schedule
func (d *Driver) Schedule() Schedule { return d.schedule }

// Round returns the number of rounds run since Boot
func (d *Driver) Round() int { return d.round }

// Boot resets every bridge and port. Topology is kept.
func (d *Driver) Boot() {
	for _, br := range d.net.Bridges() {
		br.boot(d.net.ports)
	}
	d.round = 0
	logger.LogDebug("STP: Boot %d bridges, %d links (%s schedule)",
		d.net.Len(), len(d.net.links), d.schedule)

	if d.NumHooks() > 0 {
		d.InvokeHook(HookCtx{Domain: d, Pos: HookPosBoot, Item: d.net.Snapshot()})
	}
}

// Run executes exactly steps rounds. steps <= 0 does nothing.
func (d *Driver) Run(steps int) Report {
	r := Report{}
	for i := 0; i < steps; i++ {
		if d.step() {
			r.Changed++
		} else {
			r.Converged = true
		}
		r.Rounds++
	}
	r.Round = d.round
	return r
}

// Converge runs rounds until one changes nothing or maxSteps is reached.
func (d *Driver) Converge(maxSteps int) Report {
	r := Report{}
	for i := 0; i < maxSteps; i++ {
		r.Rounds++
		if !d.step() {
			r.Converged = true
			break
		}
		r.Changed++
	}
	r.Round = d.round
	if !r.Converged {
		logger.LogWarn("STP: No fixed point after %d rounds", maxSteps)
	}
	return r
}

func (d *Driver) step() bool {
	before := d.net.capture()

	switch d.schedule {
	case ScheduleBarrier:
		d.barrierRound(before.ports)
	default:
		d.sweepRound()
	}
	d.round++

	after := d.net.capture()
	changed := !before.equal(after)

	if d.NumHooks() > 0 {
		d.reportChanges(before, after)
		d.InvokeHook(HookCtx{
			Domain: d,
			Pos:    HookPosRoundEnd,
			Item:   RoundInfo{Round: d.round, Changed: changed},
			Detail: d.net.Snapshot(),
		})
	}
	return changed
}

func (d *Driver) sweepRound() {
	for _, br := range d.net.Bridges() {
		br.process(d.net.ports, d.net)
	}
}

type sentBPDU struct {
	from PortHandle
	bpdu BPDU
}

// outbox is the fabric of one bridge under the barrier schedule.
type outbox struct {
	snap []portState
	sent []sentBPDU
}

func (o *outbox) learned(h PortHandle) (BPDU, bool) {
	s := o.snap[h]
	return s.learned, s.hasLearned
}

func (o *outbox) push(h PortHandle, b BPDU) {
	o.sent = append(o.sent, sentBPDU{from: h, bpdu: b})
}

func (d *Driver) barrierRound(snap []portState) {
	bridges := d.net.Bridges()
	boxes := make([]outbox, len(bridges))

	var wg sync.WaitGroup
	for i, br := range bridges {
		boxes[i].snap = snap
		wg.Add(1)
		go func(br *Bridge, box *outbox) {
			defer wg.Done()
			br.process(d.net.ports, box)
		}(br, &boxes[i])
	}
	wg.Wait()

	for _, box := range boxes {
		for _, s := range box.sent {
			d.net.push(s.from, s.bpdu)
		}
	}
}

func (d *Driver) reportChanges(before, after netState) {
	for _, br := range d.net.Bridges() {
		for _, h := range br.ports {
			old, cur := before.ports[h], after.ports[h]
			if old.role == cur.role && old.hasCost == cur.hasCost && old.costToRoot == cur.costToRoot {
				continue
			}
			d.InvokeHook(HookCtx{
				Domain: d,
				Pos:    HookPosPortChange,
				Item: PortChange{
					Round:   d.round,
					Bridge:  br.label,
					ID:      br.id,
					Port:    d.net.ports[h].number,
					OldRole: old.role,
					NewRole: cur.role,
					Cost:    cur.costToRoot,
					HasCost: cur.hasCost,
				},
			})
		}
	}
}
