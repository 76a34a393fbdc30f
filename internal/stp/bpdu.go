package stp

import "fmt"

// BPDU is the comparison value exchanged between bridges: a claimed root,
// the cost of reaching it and the port it was advertised from.
type BPDU struct {
	Root       BridgeID
	Cost       uint32
	SenderID   BridgeID
	SenderPort uint16
}

// selfClaim is the "I am root" hypothesis every bridge starts from.
func selfClaim(id BridgeID) BPDU {
	return BPDU{Root: id, Cost: 0, SenderID: id, SenderPort: 0}
}

// Less reports whether b is strictly better than o, comparing
// (Root, Cost, SenderID, SenderPort) lexicographically.
func (b BPDU) Less(o BPDU) bool {
	if b.Root != o.Root {
		return b.Root < o.Root
	}
	if b.Cost != o.Cost {
		return b.Cost < o.Cost
	}
	if b.SenderID != o.SenderID {
		return b.SenderID < o.SenderID
	}
	return b.SenderPort < o.SenderPort
}

// Better returns the better of a and b. Equal values return a, so the
// value already held wins over an equally good newcomer.
func Better(a, b BPDU) BPDU {
	if b.Less(a) {
		return b
	}
	return a
}

// merge folds in into a possibly absent held value.
func merge(held BPDU, ok bool, in BPDU) BPDU {
	if !ok {
		return in
	}
	return Better(held, in)
}

func (b BPDU) String() string {
	return fmt.Sprintf("[%s, %d, %s, %d]", b.Root, b.Cost, b.SenderID, b.SenderPort)
}
