package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

// WriteDOT writes the network as an undirected Graphviz graph. Links that
// forward at both ends are solid, links with a blocked end are dashed and
// the root bridge is drawn with a double border.
func WriteDOT(w io.Writer, name string, n *stp.Network) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("graph %q {\n", name))
	sb.WriteString("  node [shape=box];\n")
	sb.WriteString("\n")

	for _, b := range n.Snapshot().Bridges {
		attrs := fmt.Sprintf("label=\"%s\\n%s\"", b.Label, b.ID)
		if b.IsRoot {
			attrs += ", peripheries=2"
		}
		sb.WriteString(fmt.Sprintf("  %q [%s];\n", b.Label, attrs))
	}
	sb.WriteString("\n")

	for _, l := range n.Links() {
		pa, pb := n.Port(l.A), n.Port(l.B)
		ba, _ := n.Bridge(pa.Owner())
		bb, _ := n.Bridge(pb.Owner())

		style := "solid"
		if pa.Status() == stp.StatusBlocked || pb.Status() == stp.StatusBlocked {
			style = "dashed"
		}
		sb.WriteString(fmt.Sprintf("  %q -- %q [taillabel=\"%d\", headlabel=\"%d\", label=\"%d\", style=%s];\n",
			ba.Label(), bb.Label(), pa.Number(), pb.Number(), l.Cost, style))
	}

	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
