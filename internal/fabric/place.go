package fabric

import "github.com/Vivekmasona/fmconnect/internal/transport"

// findPlacementTarget runs a breadth-first search from the broadcaster,
// returning the first-visited node (in BFS order, ties broken by
// insertion order of each node's children) whose child count is below
// its capacity. excluded nodes are never returned as the target but are
// still traversed, so reachable descendants past an excluded node remain
// eligible.
func (d *Dispatcher) findPlacementTarget(excluded map[string]bool) (string, bool) {
	root, ok := d.reg.Broadcaster()
	if !ok {
		return "", false
	}

	visited := map[string]bool{root.ID: true}
	queue := []string{root.ID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		node, ok := d.reg.Get(id)
		if !ok {
			continue
		}

		if !excluded[id] && len(node.Children) < capacity(d.cfg, node) {
			return id, true
		}

		for _, childID := range node.Children {
			if !visited[childID] {
				visited[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	return "", false
}

// place attaches an orphan or newcomer listener.
func (d *Dispatcher) place(listenerID string) {
	listener, ok := d.reg.Get(listenerID)
	if !ok {
		return
	}

	target, found := d.findPlacementTarget(nil)
	if !found {
		listener.Parent = ""
		d.sendTo(listener, transport.RoomAssigned{Type: "room-assigned", Label: listener.Label, Parent: nil})
		d.metrics.OrphansTotal.Inc()
		return
	}

	parent, ok := d.reg.Get(target)
	if !ok {
		return
	}

	listener.Parent = target
	parent.addChild(listenerID)

	parentID := target
	d.sendTo(listener, transport.RoomAssigned{Type: "room-assigned", Label: listener.Label, Parent: &parentID})
	d.sendTo(parent, transport.ListenerJoined{Type: "listener-joined", ID: listenerID, ChildLabel: listener.Label})
	d.metrics.PlacementsTotal.Inc()
}

// reassignOrphansOf repairs the tree after deadID's departure. The caller
// is responsible for unlinking dead from its own parent and for removing
// dead from the registry once this returns.
func (d *Dispatcher) reassignOrphansOf(deadID string) {
	dead, ok := d.reg.Get(deadID)
	if !ok {
		return
	}

	// Snapshot: reassignment below progressively empties dead.Children.
	children := append([]string(nil), dead.Children...)

	for _, childID := range children {
		dead.removeChild(childID)

		child, ok := d.reg.Get(childID)
		if !ok {
			continue
		}
		child.Parent = ""

		excluded := map[string]bool{deadID: true, childID: true}
		target, found := d.findPlacementTarget(excluded)
		if !found {
			d.sendTo(child, transport.Reassigned{Type: "reassigned", NewParent: nil})
			d.metrics.OrphansTotal.Inc()
			continue
		}

		parent, ok := d.reg.Get(target)
		if !ok {
			continue
		}

		child.Parent = target
		parent.addChild(childID)

		parentID := target
		d.sendTo(child, transport.Reassigned{Type: "reassigned", NewParent: &parentID})
		d.sendTo(parent, transport.ListenerJoined{Type: "listener-joined", ID: childID, ChildLabel: child.Label})
		d.metrics.PlacementsTotal.Inc()
	}
}

// placeAllOrphans re-attempts placement for every orphaned listener, in
// connection order. It runs after a broadcaster registers, after every
// departure and at the end of every rebalance pass.
func (d *Dispatcher) placeAllOrphans() {
	for _, p := range d.reg.All() {
		if p.Role == RoleListener && p.Parent == "" {
			d.place(p.ID)
		}
	}
}
