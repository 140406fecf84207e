package datalink

import (
	proto "github.com/ystepanoff/fleetlink/protocol"
)

const maxParticipantID = int(proto.Invalid) - 1

// sendNetInfo broadcasts the network state. The cycle length advertised is
// committed on the host at the same moment so both sides switch together.
func (d *Datalink) sendNetInfo() {
	d.sched.Total = uint8(d.blocks.Len())

	d.transmit(proto.NetInfo{
		NextID:        d.nextID,
		NumBlocks:     d.sched.Total,
		NextFreeBlock: d.blocks.NextFree(),
		CurrentTick:   d.sched.Tick,
		ApproveID:     d.approveID,
	})
	d.approveID = proto.Invalid
}

func (d *Datalink) handleNetInfo(m proto.NetInfo) {
	if d.host {
		d.logf("ignoring NetInfo from another host (tick %d)", m.CurrentTick)
		return
	}

	d.sched.Resync(m.CurrentTick, m.NumBlocks)
	d.nextFreeBlock = m.NextFreeBlock

	switch d.self.Status {
	case proto.StatusNone:
		d.sendJoinRequest()
	case proto.StatusWaitingForID:
		if m.ApproveID == d.requestID {
			d.self.ID = m.NextID
			d.self.Block = d.requestBlock
			d.self.Status = proto.StatusJoined
			d.logf("joined network in block %d", d.self.Block)
			return
		}
		d.sendJoinRequest()
	}
}

// sendJoinRequest asks for admission into the advertised free block. Joining
// participants own no slot yet, so the request goes out immediately.
func (d *Datalink) sendJoinRequest() {
	d.requestID = d.cfg.RequestID()
	d.requestBlock = d.nextFreeBlock
	d.self.Status = proto.StatusWaitingForID

	d.logf("sending join request %d for block %d", d.requestID, d.requestBlock)
	d.transmit(proto.JoinRequest{RequestID: d.requestID, Block: d.requestBlock})
}

func (d *Datalink) handleJoinRequest(m proto.JoinRequest) {
	if !d.host {
		return
	}

	if d.approveID != proto.Invalid {
		d.logf("failed to approve join request %d because %d is already waiting for approval", m.RequestID, d.approveID)
		return
	}

	id, ok := d.allocateID()
	if !ok {
		d.logf("rejecting join request %d: no free participant id", m.RequestID)
		return
	}
	if !d.blocks.Admit(m.Block, id) {
		d.logf("rejecting join request %d: block %d unavailable", m.RequestID, m.Block)
		return
	}

	d.nextID = id
	d.approveID = m.RequestID
	d.logf("accepted join request %d as id %d in block %d", m.RequestID, id, m.Block)
}

// allocateID returns the next id after the last one handed out that no
// participant holds. Ids run from 1 to 254; 0 is the host and 255 means none.
func (d *Datalink) allocateID() (uint8, bool) {
	id := d.nextID
	for i := 0; i < maxParticipantID; i++ {
		id++
		if id == proto.Invalid || id == proto.HostID {
			id = 1
		}
		if !d.blocks.Holds(id) {
			return id, true
		}
	}
	return 0, false
}

func (d *Datalink) handleLeaveNetwork(m proto.LeaveNetwork) {
	if !d.host {
		return
	}
	if !d.blocks.Remove(m.Block, m.ID) {
		d.logf("leave from %d: not in block %d", m.ID, m.Block)
		return
	}
	d.logf("participant %d left block %d", m.ID, m.Block)
}
