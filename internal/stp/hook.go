package stp

import "github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosBoot triggers after all bridges are reset. Item is the Snapshot.
var HookPosBoot = &HookPos{Name: "Boot"}

// HookPosPortChange triggers once per port whose role or cost changed in a
// round. Item is a PortChange.
var HookPosPortChange = &HookPos{Name: "PortChange"}

// HookPosRoundEnd triggers after every round. Item is a RoundInfo, Detail is
// the Snapshot taken after the round.
var HookPosRoundEnd = &HookPos{Name: "RoundEnd"}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase creates a HookableBase object
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.Hooks = make([]Hook, 0)
	return h
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns how many hooks are registered
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}

// RoundInfo describes a finished round.
type RoundInfo struct {
	Round   int
	Changed bool
}

// PortChange records a role or cost transition of one port.
type PortChange struct {
	Round   int
	Bridge  string
	ID      BridgeID
	Port    uint16
	OldRole Role
	NewRole Role
	Cost    uint32
	HasCost bool
}

// LogHook writes port transitions and round summaries to the logger.
type LogHook struct{}

// NewLogHook creates a LogHook
func NewLogHook() *LogHook {
	return &LogHook{}
}

// Func implements Hook
func (h *LogHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBoot:
		logger.LogDebug("STP: Booted %d bridges", len(ctx.Item.(Snapshot).Bridges))
	case HookPosPortChange:
		c := ctx.Item.(PortChange)
		if c.HasCost {
			logger.LogInfo("STP: Round %d: bridge %s port %d %s -> %s (cost to root %d)",
				c.Round, c.Bridge, c.Port, c.OldRole, c.NewRole, c.Cost)
			return
		}
		logger.LogInfo("STP: Round %d: bridge %s port %d %s -> %s",
			c.Round, c.Bridge, c.Port, c.OldRole, c.NewRole)
	case HookPosRoundEnd:
		info := ctx.Item.(RoundInfo)
		if !info.Changed {
			logger.LogDebug("STP: Round %d: no change", info.Round)
		}
	}
}
