// Package cluster resolves membership: which nodes exist, which are
// currently live, and what the coordinator's own address is.
package cluster

import (
	"context"
	"fmt"
	"net"
	"time"

	"armada/pkg/model"
)

// NodeLister is the slice of the store the directory needs.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]*model.Node, error)
}

// Directory answers membership queries against the backing store.
// Every query hits the store fresh; nothing is cached, so two calls may
// disagree and callers must not assume a stable order across calls.
type Directory struct {
	nodes NodeLister
	ttl   time.Duration
	self  string // optional override for SelfAddress
	now   func() time.Time
}

// DefaultHeartbeatTTL is how stale a heartbeat may be before the node
// is considered dead.
const DefaultHeartbeatTTL = 10 * time.Second

func NewDirectory(nodes NodeLister, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultHeartbeatTTL
	}
	return &Directory{nodes: nodes, ttl: ttl, now: time.Now}
}

// WithSelfAddress overrides self-address discovery, for coordinators
// whose outbound route does not match their advertised address.
func (d *Directory) WithSelfAddress(addr string) *Directory {
	d.self = addr
	return d
}

// ListNodes returns every registered node with its liveness evaluated
// at call time, in the order the store yields them. A failed store
// query is fatal and propagates unmodified.
func (d *Directory) ListNodes(ctx context.Context) ([]*model.Node, error) {
	return d.nodes.ListNodes(ctx)
}

// ListLive returns only the nodes whose heartbeat is within the TTL,
// preserving store order.
func (d *Directory) ListLive(ctx context.Context) ([]*model.Node, error) {
	all, err := d.nodes.ListNodes(ctx)
	if err != nil {
		return nil, err
	}

	now := d.now()
	live := make([]*model.Node, 0, len(all))
	for _, n := range all {
		if !n.Alive(now, d.ttl) {
			continue
		}
		live = append(live, n)
	}
	return live, nil
}

// Alive reports whether a node would pass ListLive's filter right now.
func (d *Directory) Alive(n *model.Node) bool {
	return n.Alive(d.now(), d.ttl)
}

// SelfAddress returns the coordinator's own address, used to identify
// "the head" when a broadcast excludes it.
func (d *Directory) SelfAddress() (string, error) {
	if d.self != "" {
		return d.self, nil
	}
	return OutboundAddress()
}

// OutboundAddress discovers the local address used for outbound
// traffic. The UDP dial never sends a packet; it only resolves the
// route the kernel would pick.
func OutboundAddress() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("resolve outbound address: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
