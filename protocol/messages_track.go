package protocol

// TrackID maps a contact to a network track id. TrackID 0 is a request for
// an id; the host answers with the assigned one.
type TrackID struct {
	TrackID   uint16
	ContactID uint32
}

func (TrackID) Kind() Kind { return KindTrackID }

// IsRequest reports whether m asks the host for an id.
func (m TrackID) IsRequest() bool { return m.TrackID == 0 }

func (m TrackID) marshal(c *cursor) {
	c.put(uint64(m.TrackID), 16)   // 20
	c.put(uint64(m.ContactID), 32) // 52
}

func decodeTrackID(c *cursor) Message {
	return TrackID{
		TrackID:   uint16(c.take(16)),
		ContactID: uint32(c.take(32)),
	}
}

type TrackInfo struct {
	TrackID     uint16
	ContactID   uint32
	ContactType ContactType
	Allied      bool
}

func (TrackInfo) Kind() Kind { return KindTrackInfo }

func (m TrackInfo) marshal(c *cursor) {
	c.put(uint64(m.TrackID), TrackIDBits) // 16
	c.put(uint64(m.ContactID), 32)        // 48
	c.put(m.ContactType.code(), 4)        // 52
	c.put(boolBit(m.Allied), 1)           // 53
}

func decodeTrackInfo(c *cursor) Message {
	return TrackInfo{
		TrackID:     uint16(c.take(TrackIDBits)),
		ContactID:   uint32(c.take(32)),
		ContactType: contactFromCode(c.take(4)),
		Allied:      c.take(1) == 1,
	}
}

type TrackPosition struct {
	TrackID  uint16
	Position Vec3
}

func (TrackPosition) Kind() Kind { return KindTrackPosition }

func (m TrackPosition) marshal(c *cursor) {
	c.put(uint64(m.TrackID), TrackIDBits)        // 16
	c.put(squashPosition(m.Position.X), AxisBits) // 32
	c.put(squashPosition(m.Position.Y), AxisBits) // 48
	c.put(squashPosition(m.Position.Z), AxisBits) // 64
}

func decodeTrackPosition(c *cursor) Message {
	return TrackPosition{
		TrackID: uint16(c.take(TrackIDBits)),
		Position: Vec3{
			X: unsquashPosition(c.take(AxisBits)),
			Y: unsquashPosition(c.take(AxisBits)),
			Z: unsquashPosition(c.take(AxisBits)),
		},
	}
}

type TrackVelocity struct {
	TrackID  uint16
	Velocity Vec3
}

func (TrackVelocity) Kind() Kind { return KindTrackVelocity }

func (m TrackVelocity) marshal(c *cursor) {
	c.put(uint64(m.TrackID), TrackIDBits)        // 16
	c.put(squashVelocity(m.Velocity.X), AxisBits) // 32
	c.put(squashVelocity(m.Velocity.Y), AxisBits) // 48
	c.put(squashVelocity(m.Velocity.Z), AxisBits) // 64
}

func decodeTrackVelocity(c *cursor) Message {
	return TrackVelocity{
		TrackID: uint16(c.take(TrackIDBits)),
		Velocity: Vec3{
			X: unsquashVelocity(c.take(AxisBits)),
			Y: unsquashVelocity(c.take(AxisBits)),
			Z: unsquashVelocity(c.take(AxisBits)),
		},
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
