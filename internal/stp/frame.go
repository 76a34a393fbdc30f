package stp

import (
	"encoding/binary"
	"fmt"
)

// 802.1D configuration BPDU layout
const (
	BPDUFrameSize = 35

	bpduProtocolID = 0x0000
	bpduVersion    = 0x00
	bpduTypeConfig = 0x00

	// Timers are carried in 1/256 s. Aging is not simulated, so the
	// 802.1D defaults are always sent.
	bpduTimerUnit    = 256
	DefaultMaxAge    = 20 * bpduTimerUnit
	DefaultHelloTime = 2 * bpduTimerUnit
	DefaultFwdDelay  = 15 * bpduTimerUnit
)

// MarshalBinary encodes b as an 802.1D configuration BPDU
func (b BPDU) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BPDUFrameSize)

	binary.BigEndian.PutUint16(buf[0:2], bpduProtocolID)
	buf[2] = bpduVersion
	buf[3] = bpduTypeConfig
	buf[4] = 0 // flags, topology change is not simulated
	binary.BigEndian.PutUint64(buf[5:13], uint64(b.Root))
	binary.BigEndian.PutUint32(buf[13:17], b.Cost)
	binary.BigEndian.PutUint64(buf[17:25], uint64(b.SenderID))
	binary.BigEndian.PutUint16(buf[25:27], b.SenderPort)
	binary.BigEndian.PutUint16(buf[27:29], 0) // message age
	binary.BigEndian.PutUint16(buf[29:31], DefaultMaxAge)
	binary.BigEndian.PutUint16(buf[31:33], DefaultHelloTime)
	binary.BigEndian.PutUint16(buf[33:35], DefaultFwdDelay)

	return buf, nil
}

// ParseBPDU decodes an 802.1D configuration BPDU
func ParseBPDU(buf []byte) (BPDU, error) {
	if len(buf) < BPDUFrameSize {
		return BPDU{}, fmt.Errorf("buffer too small for configuration BPDU: %d bytes", len(buf))
	}
	if id := binary.BigEndian.Uint16(buf[0:2]); id != bpduProtocolID {
		return BPDU{}, fmt.Errorf("unexpected BPDU protocol id 0x%04x", id)
	}
	if buf[3] != bpduTypeConfig {
		return BPDU{}, fmt.Errorf("not a configuration BPDU: type 0x%02x", buf[3])
	}

	return BPDU{
		Root:       BridgeID(binary.BigEndian.Uint64(buf[5:13])),
		Cost:       binary.BigEndian.Uint32(buf[13:17]),
		SenderID:   BridgeID(binary.BigEndian.Uint64(buf[17:25])),
		SenderPort: binary.BigEndian.Uint16(buf[25:27]),
	}, nil
}

// AdvertisedBPDU is what bridge br last advertised, or would advertise, out
// of port h. ok is false when h is not a port of br.
func (n *Network) AdvertisedBPDU(br *Bridge, h PortHandle) (BPDU, bool) {
	for _, ph := range br.ports {
		if ph == h {
			adv := br.claim
			adv.SenderPort = n.ports[h].number
			return adv, true
		}
	}
	return BPDU{}, false
}
