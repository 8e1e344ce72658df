package model

import "time"

type Node struct {
	Address  string `json:"address"`  // network address, unique within a snapshot
	Hostname string `json:"hostname"` // informational only
	Version  string `json:"version"`

	// Capacity is the node's total resources; Allocated is what its
	// currently running jobs occupy. The scheduler only ever needs
	// Capacity - Allocated.
	Capacity  Resources `json:"capacity"`
	Allocated Resources `json:"allocated"`

	LastHeartbeat int64 `json:"last_heartbeat"` // unix seconds
}

// Alive reports whether the node heartbeated within ttl of now.
// Liveness is derived, never stored: a node that stops reporting simply
// ages out of the live set on the next directory query.
func (n *Node) Alive(now time.Time, ttl time.Duration) bool {
	if n.LastHeartbeat <= 0 {
		return false
	}
	return now.Sub(time.Unix(n.LastHeartbeat, 0)) <= ttl
}

// Free returns the node's unallocated resources.
func (n *Node) Free() Resources {
	return n.Capacity.Sub(n.Allocated)
}
