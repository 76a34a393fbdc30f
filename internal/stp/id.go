package stp

import (
	"fmt"
	"net"
)

const (
	// DefaultPriority is used when the topology does not set one
	DefaultPriority uint16 = 32768

	macBits = 48
	macMask = 1<<macBits - 1
)

// DefaultMAC is the all-ones address assumed for bridges without a MAC
var DefaultMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// BridgeID orders bridges in the election: priority in the top 16 bits,
// MAC address in the low 48.
type BridgeID uint64

// NewBridgeID composes priority*2^48 + mac. A nil MAC means DefaultMAC.
func NewBridgeID(priority uint16, mac net.HardwareAddr) (BridgeID, error) {
	if mac == nil {
		mac = DefaultMAC
	}
	if len(mac) != 6 {
		return 0, fmt.Errorf("bridge id needs a 48-bit MAC, got %d bytes", len(mac))
	}

	var v uint64
	for _, b := range mac {
		v = v<<8 | uint64(b)
	}
	return BridgeID(uint64(priority)<<macBits | v), nil
}

// Priority returns the bridge priority part of the id
func (id BridgeID) Priority() uint16 {
	return uint16(id >> macBits)
}

// MAC returns the address part of the id
func (id BridgeID) MAC() net.HardwareAddr {
	mac := make(net.HardwareAddr, 6)
	v := uint64(id) & macMask
	for i := 5; i >= 0; i-- {
		mac[i] = byte(v)
		v >>= 8
	}
	return mac
}

func (id BridgeID) String() string {
	return fmt.Sprintf("%#x", uint64(id))
}
