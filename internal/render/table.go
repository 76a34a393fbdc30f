// Package render turns simulation results into text for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

// Table is a left-aligned text table with a dashed header underline.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row; missing cells are left blank
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Write prints the table to w
func (t *Table) Write(w io.Writer) error {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	underline := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		underline[i] = strings.Repeat("-", runewidth.StringWidth(h))
	}

	lines := append([][]string{t.Headers, underline}, t.Rows...)
	for _, row := range lines {
		var sb strings.Builder
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteBridge prints one bridge and its port table
func WriteBridge(w io.Writer, b stp.BridgeState) error {
	rootText := "Root Bridge"
	if !b.IsRoot {
		rootText = "Root ID: " + b.RootID.String()
	}
	if _, err := fmt.Fprintf(w, "\n=== Bridge: %s ===\nID: %s - %s\n", b.Label, b.ID, rootText); err != nil {
		return err
	}

	if len(b.Ports) == 0 {
		_, err := fmt.Fprintln(w, "(no ports)")
		return err
	}

	t := NewTable("Port", "Role", "Status", "Cost", "Cost-to-Root", "Peer")
	for _, p := range b.Ports {
		ctr := "-"
		if p.HasCost {
			ctr = strconv.FormatUint(uint64(p.CostToRoot), 10)
		}
		t.AddRow(
			strconv.Itoa(int(p.Number)),
			p.Role.String(),
			p.Status.String(),
			strconv.FormatUint(uint64(p.LinkCost), 10),
			ctr,
			fmt.Sprintf("%s:%d", p.PeerBridge, p.PeerPort),
		)
	}
	return t.Write(w)
}

// WriteSnapshot prints every bridge of the snapshot
func WriteSnapshot(w io.Writer, s stp.Snapshot) error {
	for _, b := range s.Bridges {
		if err := WriteBridge(w, b); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints one line per bridge
func WriteSummary(w io.Writer, s stp.Snapshot) error {
	t := NewTable("Bridge", "ID", "Root", "Root ID", "Ports", "Blocked")
	for _, b := range s.Bridges {
		blocked := 0
		for _, p := range b.Ports {
			if p.Status == stp.StatusBlocked {
				blocked++
			}
		}
		root := "no"
		if b.IsRoot {
			root = "yes"
		}
		t.AddRow(b.Label, b.ID.String(), root, b.RootID.String(),
			strconv.Itoa(len(b.Ports)), strconv.Itoa(blocked))
	}
	return t.Write(w)
}
