package protocol

type ReadyAttackTime struct {
	Time uint32
}

func (ReadyAttackTime) Kind() Kind { return KindReadyAttackTime }

func (m ReadyAttackTime) marshal(c *cursor) {
	c.put(uint64(m.Time), 32) // 36
}

func decodeReadyAttackTime(c *cursor) Message {
	return ReadyAttackTime{Time: uint32(c.take(32))}
}

type AssignAttackTarget struct {
	TargetID uint16
}

func (AssignAttackTarget) Kind() Kind { return KindAssignAttackTarget }

func (m AssignAttackTarget) marshal(c *cursor) {
	c.put(uint64(m.TargetID), 16) // 20
}

func decodeAssignAttackTarget(c *cursor) Message {
	return AssignAttackTarget{TargetID: uint16(c.take(16))}
}

// IFFPosition reports the sender's own position for friend identification.
type IFFPosition struct {
	Position   Vec3
	DatalinkID uint8
}

func (IFFPosition) Kind() Kind { return KindIFFPosition }

func (m IFFPosition) marshal(c *cursor) {
	c.put(squashPosition(m.Position.X), AxisBits) // 20
	c.put(squashPosition(m.Position.Y), AxisBits) // 36
	c.put(squashPosition(m.Position.Z), AxisBits) // 52
	c.put(uint64(m.DatalinkID), 8)                // 60
}

func decodeIFFPosition(c *cursor) Message {
	return IFFPosition{
		Position: Vec3{
			X: unsquashPosition(c.take(AxisBits)),
			Y: unsquashPosition(c.take(AxisBits)),
			Z: unsquashPosition(c.take(AxisBits)),
		},
		DatalinkID: uint8(c.take(8)),
	}
}

type InterceptTaskAssign struct {
	TargetID      uint16
	ContactID     uint32
	InterceptorID uint8
	Ring          uint8
}

func (InterceptTaskAssign) Kind() Kind { return KindInterceptTaskAssign }

func (m InterceptTaskAssign) marshal(c *cursor) {
	c.put(uint64(m.TargetID), 16)     // 20
	c.put(uint64(m.ContactID), 32)    // 52
	c.put(uint64(m.InterceptorID), 8) // 60
	c.put(uint64(m.Ring), 4)          // 64
}

func decodeInterceptTaskAssign(c *cursor) Message {
	return InterceptTaskAssign{
		TargetID:      uint16(c.take(16)),
		ContactID:     uint32(c.take(32)),
		InterceptorID: uint8(c.take(8)),
		Ring:          uint8(c.take(4)),
	}
}
