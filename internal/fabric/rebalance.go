package fabric

import (
	"sort"

	"github.com/Vivekmasona/fmconnect/internal/transport"
)

// candidateLoad is a destination's load snapshot for one rebalance pass.
// load is updated in place as relocations land on it, so later overflow
// children in the same pass see the already-incremented figure.
type candidateLoad struct {
	id       string
	load     int
	capacity int
}

// handleRebalance relocates overflow children from over-capacity nodes to
// the least-loaded node with free capacity. It is a
// best-effort convergence loop, not a global optimizer: any overflow
// child with no eligible destination stays put and is retried next tick.
func (d *Dispatcher) handleRebalance() {
	all := d.reg.All()

	candidates := make([]candidateLoad, 0, len(all))
	for _, p := range all {
		candidates = append(candidates, candidateLoad{
			id:       p.ID,
			load:     len(p.Children),
			capacity: capacity(d.cfg, p),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].load < candidates[j].load })

	for _, n := range all {
		nodeCap := capacity(d.cfg, n)
		if len(n.Children) <= nodeCap {
			continue
		}

		overflow := append([]string(nil), n.Children[nodeCap:]...)
		for _, childID := range overflow {
			dest := firstAvailableCandidate(candidates, n.ID)
			if dest == nil {
				continue // no eligible destination; retried next tick
			}

			destP, ok := d.reg.Get(dest.id)
			if !ok {
				continue
			}
			child, ok := d.reg.Get(childID)
			if !ok {
				continue
			}

			n.removeChild(childID)
			destP.addChild(childID)
			child.Parent = dest.id
			dest.load++

			newParent := dest.id
			d.sendTo(destP, transport.ListenerJoined{Type: "listener-joined", ID: childID, ChildLabel: child.Label})
			d.sendTo(child, transport.Reassigned{Type: "reassigned", NewParent: &newParent})
			d.metrics.RebalanceMovesTotal.Inc()
		}
	}

	d.placeAllOrphans()
}

func firstAvailableCandidate(candidates []candidateLoad, exceptID string) *candidateLoad {
	for i := range candidates {
		c := &candidates[i]
		if c.id == exceptID {
			continue
		}
		if c.load < c.capacity {
			return c
		}
	}
	return nil
}
