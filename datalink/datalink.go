// Package datalink implements a participant of the fleet's time-division
// broadcast network: admission, slot scheduling, outbound governing and the
// shared track picture.
//
// A Datalink is owned by one driving loop and advanced with Update once per
// tick. It is not safe for concurrent use.
package datalink

import (
	"log"

	proto "github.com/ystepanoff/fleetlink/protocol"
	"github.com/ystepanoff/fleetlink/transport"
)

type Datalink struct {
	cfg    Config
	logger *log.Logger

	self  proto.Participant
	host  bool
	sched Schedule

	// host side
	blocks    *BlockTable
	approveID uint8
	nextID    uint8

	// joining side
	requestID     uint8
	requestBlock  uint8
	nextFreeBlock uint8

	disconnectNext bool

	rx     *transport.Receiver
	tx     *transport.Transmitter
	outbox *transport.Outbox
	inbox  []proto.Message

	tracks     *TrackStore
	friendlies []Friendly
}

// New creates a participant on driver. With cfg.Host set it starts as the
// network host, already joined; otherwise it waits for a NetInfo to request
// admission.
func New(driver transport.RadioDriver, cfg Config) *Datalink {
	cfg = cfg.withDefaults()

	d := &Datalink{
		cfg:           cfg,
		logger:        cfg.Logger,
		self:          proto.NewMember(),
		approveID:     proto.Invalid,
		requestID:     proto.Invalid,
		requestBlock:  proto.Invalid,
		nextFreeBlock: proto.Invalid,
		rx:            transport.NewReceiverWithDriver(driver, cfg.Logger),
		tx:            transport.NewTransmitterWithDriver(driver),
		outbox:        transport.NewOutbox(cfg.QueueLimit, cfg.QueueWarn, cfg.QueuePolicy, cfg.Logger),
		tracks:        newTrackStore(),
	}

	d.rx.RegisterHandler(proto.KindNetInfo, func(m proto.Message) { d.handleNetInfo(m.(proto.NetInfo)) })
	d.rx.RegisterHandler(proto.KindJoinRequest, func(m proto.Message) { d.handleJoinRequest(m.(proto.JoinRequest)) })
	d.rx.RegisterHandler(proto.KindLeaveNetwork, func(m proto.Message) { d.handleLeaveNetwork(m.(proto.LeaveNetwork)) })
	d.rx.RegisterHandler(proto.KindTrackID, func(m proto.Message) { d.handleTrackID(m.(proto.TrackID)) })
	d.rx.RegisterHandler(proto.KindTrackInfo, func(m proto.Message) { d.handleTrackInfo(m.(proto.TrackInfo)) })
	d.rx.RegisterHandler(proto.KindTrackPosition, func(m proto.Message) { d.handleTrackPosition(m.(proto.TrackPosition)) })
	d.rx.RegisterHandler(proto.KindTrackVelocity, func(m proto.Message) { d.handleTrackVelocity(m.(proto.TrackVelocity)) })
	d.rx.RegisterHandler(proto.KindIFFPosition, func(m proto.Message) { d.handleIFFPosition(m.(proto.IFFPosition)) })
	d.rx.RegisterFallback(func(m proto.Message) { d.inbox = append(d.inbox, m) })

	if cfg.Host {
		d.setupAsHost()
	}
	return d
}

func (d *Datalink) setupAsHost() {
	d.host = true
	d.self = proto.NewHost()
	d.blocks = newHostBlocks()
	d.sched.Total = uint8(d.blocks.Len())
	d.logf("set up as host")
}

// Update runs one tick: drain and dispatch received frames, then transmit in
// the own slot and, on the host, broadcast NetInfo in slot 0.
func (d *Datalink) Update() {
	if d.self.Status == proto.StatusDisconnected {
		return
	}

	d.rx.Poll()

	if d.self.Status != proto.StatusJoined {
		return
	}

	broadcast := d.host && d.sched.IsBroadcastSlot()
	turn := d.sched.IsTurn(d.self.Block)

	if broadcast {
		d.sendNetInfo()
	} else if turn {
		if d.disconnectNext {
			d.transmit(proto.LeaveNetwork{Block: d.self.Block, ID: d.self.ID})
			d.self.Status = proto.StatusDisconnected
			d.logf("disconnected")
			return
		}
		if m, ok := d.outbox.Pop(); ok {
			d.transmit(m)
		}
	}

	d.sched.Advance()
}

func (d *Datalink) transmit(m proto.Message) {
	if err := d.tx.Send(m); err != nil {
		d.logf("tx %v failed: %v", m.Kind(), err)
	}
}

// Send queues m for transmission in the own slot.
func (d *Datalink) Send(m proto.Message) error {
	return d.outbox.Push(m)
}

// Messages drains the application messages received since the last call.
func (d *Datalink) Messages() []proto.Message {
	out := d.inbox
	d.inbox = nil
	return out
}

// Disconnect leaves the network. A joined participant announces it in its
// next slot; anyone else stops immediately.
func (d *Datalink) Disconnect() {
	if d.self.Status != proto.StatusJoined {
		d.self.Status = proto.StatusDisconnected
		return
	}
	d.disconnectNext = true
}

func (d *Datalink) Tick() uint32 { return d.sched.Tick }

func (d *Datalink) TotalBlocks() uint8 { return d.sched.Total }

func (d *Datalink) Status() proto.Status { return d.self.Status }

func (d *Datalink) ID() uint8 { return d.self.ID }

func (d *Datalink) Block() uint8 { return d.self.Block }

func (d *Datalink) IsHost() bool { return d.host }

// Blocks returns the host's slot table, or nil on a member.
func (d *Datalink) Blocks() []TimeBlock {
	if d.blocks == nil {
		return nil
	}
	return d.blocks.Snapshot()
}

func (d *Datalink) OutboxStats() transport.OutboxStats { return d.outbox.Stats() }

func (d *Datalink) logf(format string, args ...any) {
	d.logger.Printf("[Datalink %d] "+format, append([]any{d.self.ID}, args...)...)
}
