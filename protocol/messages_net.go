package protocol

// NetInfo is the host's periodic network state broadcast.
// NextID is the datalink id most recently handed out; a participant whose
// request is approved adopts it.
type NetInfo struct {
	NextID        uint8
	NumBlocks     uint8
	NextFreeBlock uint8
	CurrentTick   uint32
	ApproveID     uint8
}

func (NetInfo) Kind() Kind { return KindNetInfo }

func (m NetInfo) marshal(c *cursor) {
	c.put(uint64(m.NextID), 8)        // 12
	c.put(uint64(m.NumBlocks), 4)     // 16
	c.put(uint64(m.NextFreeBlock), 4) // 20
	c.put(uint64(m.CurrentTick), 32)  // 52
	c.put(uint64(m.ApproveID), 8)     // 60
}

func decodeNetInfo(c *cursor) Message {
	return NetInfo{
		NextID:        uint8(c.take(8)),
		NumBlocks:     uint8(c.take(4)),
		NextFreeBlock: uint8(c.take(4)),
		CurrentTick:   uint32(c.take(32)),
		ApproveID:     uint8(c.take(8)),
	}
}

type JoinRequest struct {
	RequestID uint8
	Block     uint8
}

func (JoinRequest) Kind() Kind { return KindJoinRequest }

func (m JoinRequest) marshal(c *cursor) {
	c.put(uint64(m.RequestID), 8) // 12
	c.put(uint64(m.Block), 4)     // 16
}

func decodeJoinRequest(c *cursor) Message {
	return JoinRequest{
		RequestID: uint8(c.take(8)),
		Block:     uint8(c.take(4)),
	}
}

type LeaveNetwork struct {
	Block uint8
	ID    uint8
}

func (LeaveNetwork) Kind() Kind { return KindLeaveNetwork }

func (m LeaveNetwork) marshal(c *cursor) {
	c.put(uint64(m.Block), 4) // 8
	c.put(uint64(m.ID), 8)    // 16
}

func decodeLeaveNetwork(c *cursor) Message {
	return LeaveNetwork{
		Block: uint8(c.take(4)),
		ID:    uint8(c.take(8)),
	}
}
