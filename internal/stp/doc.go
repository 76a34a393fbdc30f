// Package stp simulates the 802.1D spanning-tree election over a fixed
// topology of bridges and point-to-point links.
//
// A Network holds bridges and an arena of paired ports. A Driver boots the
// network and runs synchronous rounds; in each round every bridge folds the
// BPDUs its ports have learned into a winning claim, assigns port roles and
// advertises the claim out of its designated ports. Once enough rounds have
// passed the network settles on a single root bridge (the lowest BridgeID),
// one root port per other bridge, and blocked ports that break every loop.
package stp
