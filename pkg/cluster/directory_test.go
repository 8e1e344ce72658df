package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"armada/pkg/model"
)

type fakeLister struct {
	nodes []*model.Node
	err   error
}

func (f *fakeLister) ListNodes(_ context.Context) ([]*model.Node, error) {
	return f.nodes, f.err
}

func nodeAt(addr string, heartbeatAge time.Duration) *model.Node {
	return &model.Node{
		Address:       addr,
		LastHeartbeat: time.Now().Add(-heartbeatAge).Unix(),
	}
}

func TestListLiveFiltersStaleHeartbeats(t *testing.T) {
	lister := &fakeLister{nodes: []*model.Node{
		nodeAt("10.0.0.1", 0),
		nodeAt("10.0.0.2", time.Minute), // dead
		nodeAt("10.0.0.3", 2*time.Second),
		{Address: "10.0.0.4"}, // never heartbeated
	}}
	dir := NewDirectory(lister, 10*time.Second)

	live, err := dir.ListLive(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 2)

	// Store order is preserved, never re-sorted.
	require.Equal(t, "10.0.0.1", live[0].Address)
	require.Equal(t, "10.0.0.3", live[1].Address)
}

func TestListLivePropagatesStoreError(t *testing.T) {
	boom := errors.New("membership query failed")
	dir := NewDirectory(&fakeLister{err: boom}, 10*time.Second)

	_, err := dir.ListLive(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestListLiveEmptyClusterIsNotAnError(t *testing.T) {
	dir := NewDirectory(&fakeLister{}, 10*time.Second)

	live, err := dir.ListLive(context.Background())
	require.NoError(t, err)
	require.Empty(t, live)
}

func TestSelfAddressOverride(t *testing.T) {
	dir := NewDirectory(&fakeLister{}, 0).WithSelfAddress("10.0.0.9")

	self, err := dir.SelfAddress()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.9", self)
}

func TestNoLivenessCachingBetweenCalls(t *testing.T) {
	lister := &fakeLister{nodes: []*model.Node{nodeAt("10.0.0.1", 0)}}
	dir := NewDirectory(lister, 10*time.Second)

	live, err := dir.ListLive(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 1)

	// The node stops heartbeating; the very next query must see it gone.
	lister.nodes = []*model.Node{nodeAt("10.0.0.1", time.Hour)}
	live, err = dir.ListLive(context.Background())
	require.NoError(t, err)
	require.Empty(t, live)
}
