package fabric

import "github.com/Vivekmasona/fmconnect/internal/transport"

// routeOffer, routeAnswer and routeCandidate deliver a point-to-point
// handshake message to the addressed peer, rewritten with the sender's
// id. An unknown target is a silent drop; the server never inspects the
// handshake payload itself.
func (d *Dispatcher) routeOffer(sender *Participant, m transport.OfferMsg) {
	target, ok := d.reg.Get(m.Target)
	if !ok {
		return
	}
	d.sendTo(target, transport.RelayedOffer{Type: "offer", From: sender.ID, Offer: m.Offer})
}

func (d *Dispatcher) routeAnswer(sender *Participant, m transport.AnswerMsg) {
	target, ok := d.reg.Get(m.Target)
	if !ok {
		return
	}
	d.sendTo(target, transport.RelayedAnswer{Type: "answer", From: sender.ID, Answer: m.Answer})
}

func (d *Dispatcher) routeCandidate(sender *Participant, m transport.CandidateMsg) {
	target, ok := d.reg.Get(m.Target)
	if !ok {
		return
	}
	d.sendTo(target, transport.RelayedCandidate{Type: "candidate", From: sender.ID, Candidate: m.Candidate})
}

// routeCmd fans a broadcaster control message out to every live
// participant, including the broadcaster itself. A non-broadcaster
// sender is an unauthorized-sender drop.
func (d *Dispatcher) routeCmd(sender *Participant, m transport.CmdMsg) {
	if sender.Role != RoleBroadcaster {
		return
	}
	for _, p := range d.reg.All() {
		d.sendTo(p, transport.CmdOut{Type: "cmd", Cmd: m.Payload})
	}
}

// routeMetadata fans a broadcaster metadata message out to every live
// participant. Per SPEC_FULL.md §9 decision 5, a listener sending
// metadata is ignored (unauthorized-sender drop).
func (d *Dispatcher) routeMetadata(sender *Participant, m transport.MetadataMsg) {
	if sender.Role != RoleBroadcaster {
		return
	}
	for _, p := range d.reg.All() {
		d.sendTo(p, transport.MetadataOut{Payload: m.Payload})
	}
}

// routeRoomMessage forwards a message to the sender's direct children
// only. It is not recursive — a relay wanting subtree-wide fan-out is
// expected to re-emit it to its own children.
func (d *Dispatcher) routeRoomMessage(sender *Participant, m transport.RoomMessageMsg) {
	for _, childID := range sender.Children {
		child, ok := d.reg.Get(childID)
		if !ok {
			continue
		}
		d.sendTo(child, transport.RoomMessageOut{Type: "room-message", From: sender.ID, Payload: m.Payload})
	}
}
