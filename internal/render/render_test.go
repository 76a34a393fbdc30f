package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

func converged(t *testing.T) *stp.Network {
	t.Helper()
	n := stp.NewNetwork()
	a := n.GetOrCreate("A", 1)
	b := n.GetOrCreate("B", 2)
	c := n.GetOrCreate("C", 3)
	require.NoError(t, n.Connect(a, 1, b, 1, 1000))
	require.NoError(t, n.Connect(a, 2, c, 1, 1000))
	require.NoError(t, n.Connect(b, 2, c, 2, 1000))

	d := stp.NewDriver(n)
	d.Boot()
	require.True(t, d.Converge(10).Converged)
	return n
}

func TestTableAlignsColumns(t *testing.T) {
	tbl := NewTable("Port", "Role")
	tbl.AddRow("1", "Designated")
	tbl.AddRow("10", "Root Port")
	tbl.AddRow("ü", "x")

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))

	assert.Equal(t, strings.Join([]string{
		"Port  Role",
		"----  ----",
		"1     Designated",
		"10    Root Port",
		"ü     x",
		"",
	}, "\n"), buf.String())
}

func TestWriteBridge(t *testing.T) {
	s := converged(t).Snapshot()

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "=== Bridge: A ===\nID: 0x1 - Root Bridge")
	assert.Contains(t, out, "=== Bridge: C ===\nID: 0x3 - Root ID: 0x1")
	assert.Contains(t, out, "Port  Role          Status      Cost  Cost-to-Root  Peer")
	assert.Contains(t, out, "1     Root Port     Forwarding  4     4             A:2")
	assert.Contains(t, out, "2     Undesignated  Blocked     4     -             B:2")
}

func TestWriteLoneBridge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBridge(&buf, stp.BridgeState{Label: "solo", ID: 9, IsRoot: true, RootID: 9}))
	assert.Contains(t, buf.String(), "(no ports)")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, converged(t).Snapshot()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "A       0x1  yes   0x1      2      0", lines[2])
	assert.Equal(t, "C       0x3  no    0x1      2      1", lines[4])
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, "tri", converged(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "graph \"tri\" {\n"))
	assert.Contains(t, out, `"A" [label="A\n0x1", peripheries=2];`)
	assert.Contains(t, out, `"B" [label="B\n0x2"];`)
	assert.Contains(t, out, `"A" -- "B" [taillabel="1", headlabel="1", label="4", style=solid];`)
	assert.Contains(t, out, `"B" -- "C" [taillabel="2", headlabel="2", label="4", style=dashed];`)
}

func TestDumpFrame(t *testing.T) {
	b := stp.BPDU{Root: 0x1000001122334455, Cost: 19, SenderID: 0x8000aabbccddeeff, SenderPort: 3}
	frame, err := b.MarshalBinary()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpFrame(&buf, frame))
	out := buf.String()

	assert.Contains(t, out, "Root ID:       4096/00:11:22:33:44:55")
	assert.Contains(t, out, "Root Cost:     19")
	assert.Contains(t, out, "Bridge ID:     32768/aa:bb:cc:dd:ee:ff")
	assert.Contains(t, out, "Port ID:       3")
	assert.Contains(t, out, "Max Age:       20.00s")
	assert.Contains(t, out, "Hello Time:    2.00s")
	assert.Contains(t, out, "0000:  00 00 00 00 00 10 00 00  11 22 33 44 55 00 00 00")

	assert.Error(t, DumpFrame(&buf, frame[:12]))
}
