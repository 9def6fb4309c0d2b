package fabric

// handleHeartbeatSweep scans every participant and force-disconnects any
// that have exceeded the heartbeat timeout. The monitor
// never mutates the tree directly — it only closes transports; the
// resulting read error on each connection's goroutine posts a Close
// command back to this same dispatcher, which runs the standard
// departure path.
func (d *Dispatcher) handleHeartbeatSweep() {
	now := d.now()
	for _, p := range d.reg.All() {
		if now.Sub(p.LastSeen) > d.cfg.HeartbeatTimeout {
			d.metrics.HeartbeatTimeoutTotal.Inc()
			if p.Transport != nil {
				_ = p.Transport.Close()
			}
		}
	}
}
