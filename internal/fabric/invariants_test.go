package fabric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// checkInvariants asserts the data model's structural invariants against
// the dispatcher's live registry. It takes the registry lock itself, so
// callers must not hold it; call this only between dispatcher steps.
func checkInvariants(t *testing.T, h *testHarness) {
	t.Helper()
	h.d.reg.Lock()
	defer h.d.reg.Unlock()

	all := h.d.reg.All()
	byID := make(map[string]*Participant, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	broadcasters := 0
	for _, p := range all {
		if p.Role == RoleBroadcaster {
			broadcasters++
			require.Equal(t, "", p.Parent, "broadcaster must have no parent")
		}
		require.NotEqual(t, p.ID, p.Parent, "no self-parent")

		for _, childID := range p.Children {
			child, ok := byID[childID]
			require.True(t, ok, "child %s referenced but absent from registry", childID)
			require.Equal(t, p.ID, child.Parent, "bidirectional consistency: %s claims child %s but child's parent disagrees", p.ID, childID)
		}
	}
	require.LessOrEqual(t, broadcasters, 1, "at most one broadcaster")

	for id, p := range byID {
		if p.Parent == "" {
			continue
		}
		parent, ok := byID[p.Parent]
		require.True(t, ok, "participant %s claims parent %s absent from registry", id, p.Parent)
		require.True(t, parent.hasChild(id), "bidirectional consistency: %s's parent %s doesn't list it as a child", id, p.Parent)
	}

	// Acyclicity: walking parent pointers from any node must terminate.
	for _, p := range all {
		seen := map[string]bool{}
		cur := p.ID
		for cur != "" {
			require.False(t, seen[cur], "cycle detected in parent chain starting at %s", p.ID)
			seen[cur] = true
			next, ok := byID[cur]
			if !ok {
				break
			}
			cur = next.Parent
		}
	}

	for _, p := range all {
		require.LessOrEqual(t, len(p.Children), capacity(h.d.cfg, p), "capacity invariant violated for %s", p.ID)
	}
}

func TestInvariantsHoldThroughChurn(t *testing.T) {
	h := newHarness(t)

	b, _ := h.connect("B")
	h.register(b, "broadcaster")
	checkInvariants(t, h)

	var listeners []string
	for i := 0; i < 8; i++ {
		id, _ := h.connect("L" + string(rune('A'+i)))
		h.register(id, "listener")
		listeners = append(listeners, id)
		checkInvariants(t, h)
	}

	h.close(listeners[0], "client_disconnect")
	checkInvariants(t, h)

	h.rebalance()
	checkInvariants(t, h)

	h.advance(20_000_000_000) // 20s, beyond default 15s timeout
	h.heartbeatSweep()
	checkInvariants(t, h)
}

func TestNoOrphanLeftBehindWhenCapacityExists(t *testing.T) {
	h := newHarness(t)

	b, _ := h.connect("B")
	h.register(b, "broadcaster")
	l1, _ := h.connect("L1")
	h.register(l1, "listener")
	l2, _ := h.connect("L2")
	h.register(l2, "listener")

	// B is now full; orphan L1's slot frees up once we remove L1, and the
	// next placement should succeed immediately rather than staying orphaned.
	h.close(l1, "client_disconnect")
	require.Len(t, h.get(b).Children, 1)

	l9, _ := h.connect("L9")
	h.register(l9, "listener")
	require.NotEqual(t, "", h.get(l9).Parent, "placement must succeed: capacity exists")
}
