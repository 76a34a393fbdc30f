package render

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// DumpFrame decodes an encoded configuration BPDU and prints its fields
// followed by the raw bytes.
func DumpFrame(w io.Writer, frame []byte) error {
	var bpdu layers.STP
	if err := bpdu.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
		return fmt.Errorf("failed to decode BPDU: %w", err)
	}

	fmt.Fprintln(w, "\n========== BPDU DUMP ==========")
	fmt.Fprintf(w, "Total frame size: %d bytes\n\n", len(frame))

	fmt.Fprintln(w, "--- Configuration BPDU ---")
	fmt.Fprintf(w, "Protocol ID:   0x%04X\n", bpdu.ProtocolID)
	fmt.Fprintf(w, "Version:       %d\n", bpdu.Version)
	fmt.Fprintf(w, "Type:          0x%02X\n", bpdu.Type)
	fmt.Fprintf(w, "Flags:         TC=%t TCA=%t\n", bpdu.TC, bpdu.TCA)
	fmt.Fprintf(w, "Root ID:       %s\n", switchID(bpdu.RouteID))
	fmt.Fprintf(w, "Root Cost:     %d\n", bpdu.Cost)
	fmt.Fprintf(w, "Bridge ID:     %s\n", switchID(bpdu.BridgeID))
	fmt.Fprintf(w, "Port ID:       %d\n", bpdu.PortID)
	fmt.Fprintf(w, "Message Age:   %s\n", timer(bpdu.MessageAge))
	fmt.Fprintf(w, "Max Age:       %s\n", timer(bpdu.MaxAge))
	fmt.Fprintf(w, "Hello Time:    %s\n", timer(bpdu.HelloTime))
	fmt.Fprintf(w, "Forward Delay: %s\n", timer(bpdu.FDelay))

	dumpRawBytes(w, frame)
	fmt.Fprintln(w, "================================")
	return nil
}

// priority/system id are split by the decoder; print them joined as the
// simulator's 16-bit priority
func switchID(id layers.STPSwitchID) string {
	return fmt.Sprintf("%d/%s", id.Priority|id.SysID, id.HwAddr)
}

// timers are carried in 1/256 s
func timer(v uint16) string {
	return fmt.Sprintf("%.2fs", float64(v)/256)
}

func dumpRawBytes(w io.Writer, data []byte) {
	fmt.Fprintln(w, "\nRaw bytes (hex):")

	for i := 0; i < len(data); i += 16 {
		// Offset
		fmt.Fprintf(w, "%04X:  ", i)

		// Hex bytes
		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(w, "%02X ", data[i+j])
			} else {
				fmt.Fprint(w, "   ")
			}
			if j == 7 {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}
}
