package fabric

import (
	"context"
	"time"

	"github.com/Vivekmasona/fmconnect/internal/config"
	"github.com/Vivekmasona/fmconnect/internal/logging"
	"github.com/Vivekmasona/fmconnect/internal/metrics"
	"github.com/Vivekmasona/fmconnect/internal/transport"
)

// command is the tagged union of inputs the dispatcher serializes:
// connect, message, close and the two timer ticks. Every mutation to the
// registry passes through one of these — the placement engine, router,
// liveness monitor and rebalancer enqueue work here rather than touching
// the registry directly.
type command interface {
	isCommand()
}

type connectCmd struct{ participant *Participant }
type messageCmd struct {
	id  string
	msg transport.Inbound
}
type closeCmd struct {
	id     string
	reason string
}
type heartbeatSweepCmd struct{}
type rebalanceCmd struct{}

func (connectCmd) isCommand()        {}
func (messageCmd) isCommand()        {}
func (closeCmd) isCommand()          {}
func (heartbeatSweepCmd) isCommand() {}
func (rebalanceCmd) isCommand()      {}

// defaultCommandQueueSize bounds the dispatcher's inbox. Commands queue
// briefly under bursty connect/disconnect load; a full queue blocks the
// enqueuing goroutine rather than silently dropping a mutation, since
// unlike outbound sends, tree mutations must not be lost.
const defaultCommandQueueSize = 1024

// Dispatcher is the single logical writer over the registry. Exactly
// one goroutine — the one running Run — ever mutates participant state;
// every other component posts commands to cmds.
type Dispatcher struct {
	cfg     config.Config
	reg     *Registry
	metrics *metrics.Metrics
	cmds    chan command
	now     func() time.Time
}

// NewDispatcher constructs a Dispatcher. now defaults to time.Now; tests
// may override it via WithClock to control heartbeat-timeout behavior
// deterministically.
func NewDispatcher(cfg config.Config, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		reg:     NewRegistry(),
		metrics: m,
		cmds:    make(chan command, defaultCommandQueueSize),
		now:     time.Now,
	}
}

// WithClock overrides the dispatcher's clock, for deterministic tests.
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	d.now = clock
	return d
}

// Registry exposes the underlying registry for the admin view's
// read-locked snapshot. The dispatcher remains the only writer.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Run consumes commands until ctx is canceled. Each command is handled
// under the registry's coarse lock, held for the command's full duration
// — the single-writer model this module picks.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case cmd := <-d.cmds:
			d.reg.Lock()
			d.handle(cmd)
			d.reg.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) handle(cmd command) {
	switch c := cmd.(type) {
	case connectCmd:
		d.handleConnect(c)
	case messageCmd:
		d.handleMessage(c)
	case closeCmd:
		d.handleClose(c)
	case heartbeatSweepCmd:
		d.handleHeartbeatSweep()
	case rebalanceCmd:
		d.handleRebalance()
	}
}

// Connect registers a newly-accepted, unregistered participant.
func (d *Dispatcher) Connect(p *Participant) { d.cmds <- connectCmd{participant: p} }

// Message enqueues an inbound frame already parsed from one participant's
// connection. Callers must enqueue messages for a given participant
// strictly in arrival order — Message itself preserves that because a
// single sender's sequence of channel sends is received in the same
// order it was sent.
func (d *Dispatcher) Message(id string, msg transport.Inbound) {
	d.cmds <- messageCmd{id: id, msg: msg}
}

// Close enqueues a participant's departure, whether from a clean
// disconnect or a liveness timeout.
func (d *Dispatcher) Close(id, reason string) { d.cmds <- closeCmd{id: id, reason: reason} }

// TriggerHeartbeatSweep enqueues a liveness sweep tick.
func (d *Dispatcher) TriggerHeartbeatSweep() { d.cmds <- heartbeatSweepCmd{} }

// TriggerRebalance enqueues a rebalance tick.
func (d *Dispatcher) TriggerRebalance() { d.cmds <- rebalanceCmd{} }

func (d *Dispatcher) handleConnect(c connectCmd) {
	d.reg.Add(c.participant)
	d.metrics.ParticipantsTotal.Inc()
}

func (d *Dispatcher) handleMessage(c messageCmd) {
	p, ok := d.reg.Get(c.id)
	if !ok {
		return // participant already departed; drop
	}

	switch m := c.msg.(type) {
	case transport.RegisterMsg:
		d.handleRegister(p, m)
	case transport.HeartbeatMsg:
		p.LastSeen = d.now()
	case transport.OfferMsg:
		d.routeOffer(p, m)
	case transport.AnswerMsg:
		d.routeAnswer(p, m)
	case transport.CandidateMsg:
		d.routeCandidate(p, m)
	case transport.CmdMsg:
		d.routeCmd(p, m)
	case transport.MetadataMsg:
		d.routeMetadata(p, m)
	case transport.RoomMessageMsg:
		d.routeRoomMessage(p, m)
	}
}

func (d *Dispatcher) handleRegister(p *Participant, m transport.RegisterMsg) {
	if p.Role != RoleUnregistered {
		return // role never changes after first register; silent drop
	}

	switch m.Role {
	case "broadcaster":
		if _, exists := d.reg.Broadcaster(); exists {
			return // second broadcaster rejected, see SPEC_FULL.md §9 decision 1
		}
		p.Role = RoleBroadcaster
		p.Parent = ""
		d.reg.SetBroadcaster(p.ID)
		d.sendTo(p, transport.RegisteredAsBroadcaster{
			Type:  "registered-as-broadcaster",
			ID:    p.ID,
			Label: p.Label,
		})
		d.placeAllOrphans()
	case "listener":
		p.Role = RoleListener
		d.place(p.ID)
	default:
		// unrecognized role value; malformed, silent drop
	}
}

func (d *Dispatcher) handleClose(c closeCmd) {
	p, ok := d.reg.Get(c.id)
	if !ok {
		return
	}

	if p.Parent != "" {
		if parent, ok := d.reg.Get(p.Parent); ok {
			parent.removeChild(p.ID)
			d.sendTo(parent, transport.ChildLeft{Type: "child-left", ID: p.ID, Label: p.Label})
		}
	}

	if p.Role == RoleBroadcaster {
		// Clear broadcaster status before reassignment so children of a
		// departing broadcaster are immediately treated as orphans rather
		// than briefly reassigned within a now-rootless tree.
		d.reg.ClearBroadcasterIfMatches(p.ID)
	}

	d.reassignOrphansOf(p.ID)
	d.reg.Remove(p.ID)
	d.metrics.ParticipantsTotal.Dec()

	// A departure frees capacity elsewhere in the tree; give every
	// standing orphan (not just the departed node's own children) another
	// shot at placement.
	d.placeAllOrphans()

	logging.Participant(p.ID, "departed: %s", c.reason)
}

func (d *Dispatcher) sendTo(p *Participant, msg any) {
	if p == nil || p.Transport == nil {
		return
	}
	if err := p.Transport.Send(msg); err != nil {
		logging.Participant(p.ID, "send failed: %v", err)
	}
}

func capacity(cfg config.Config, p *Participant) int {
	if p.Role == RoleBroadcaster {
		return cfg.Croot
	}
	return cfg.Cnode
}
