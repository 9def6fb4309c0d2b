package fabric

import (
	"testing"

	"github.com/Vivekmasona/fmconnect/internal/transport"
	"github.com/stretchr/testify/require"
)

func TestPlace_NoBroadcasterYieldsOrphan(t *testing.T) {
	h := newHarness(t)
	l1, l1Tx := h.connect("L1")
	h.register(l1, "listener")

	require.Equal(t, "", h.get(l1).Parent)
	ra := l1Tx.messages()[0].(transport.RoomAssigned)
	require.Nil(t, ra.Parent)
}

func TestPlace_BFSTieBreaksByInsertionOrder(t *testing.T) {
	h := newHarness(t)
	b, _ := h.connect("B")
	h.register(b, "broadcaster")

	l1, _ := h.connect("L1")
	h.register(l1, "listener")
	l2, _ := h.connect("L2")
	h.register(l2, "listener")

	// B now full (Croot=2). Next listener goes to whichever of L1/L2 was
	// inserted first into B's children — L1.
	l3, _ := h.connect("L3")
	h.register(l3, "listener")
	require.Equal(t, l1, h.get(l3).Parent)

	// L1 still has room (1/2): BFS visits L1 before descending further.
	l4, _ := h.connect("L4")
	h.register(l4, "listener")
	require.Equal(t, l1, h.get(l4).Parent)

	// L1 now full (L3, L4). BFS moves to the next same-level sibling, L2,
	// rather than descending into L1's newly-full subtree.
	l5, _ := h.connect("L5")
	h.register(l5, "listener")
	require.Equal(t, l2, h.get(l5).Parent)
}

func TestSecondBroadcasterRejected(t *testing.T) {
	h := newHarness(t)
	b1, b1Tx := h.connect("B1")
	h.register(b1, "broadcaster")

	b2, b2Tx := h.connect("B2")
	h.register(b2, "broadcaster")

	require.Equal(t, RoleBroadcaster, h.get(b1).Role)
	require.Equal(t, RoleUnregistered, h.get(b2).Role)
	require.Len(t, b2Tx.messages(), 0, "rejected broadcaster gets no confirmation")

	broadcaster, ok := h.d.reg.Broadcaster()
	require.True(t, ok)
	require.Equal(t, b1, broadcaster.ID)
	_ = b1Tx
}

func TestRejectedBroadcasterCanStillRegisterAsListener(t *testing.T) {
	h := newHarness(t)
	b1, _ := h.connect("B1")
	h.register(b1, "broadcaster")

	b2, _ := h.connect("B2")
	h.register(b2, "broadcaster") // rejected
	h.register(b2, "listener")

	require.Equal(t, RoleListener, h.get(b2).Role)
	require.Equal(t, b1, h.get(b2).Parent)
}

func TestRegisterIsIdempotentAfterFirstRole(t *testing.T) {
	h := newHarness(t)
	b, _ := h.connect("B")
	h.register(b, "broadcaster")
	h.register(b, "listener") // ignored; role is fixed

	require.Equal(t, RoleBroadcaster, h.get(b).Role)
}
