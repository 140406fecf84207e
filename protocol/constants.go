package protocol

// Generic datalink constants (platform independent). All higher layers should depend on this file.
const (
	// Frame sizing
	// Every message is a single 64-bit word, read LSB first:
	//   Kind (4) | Fields (0-60)
	FrameBits = 64
	KindBits  = 4

	// Invalid marks an unset 8-bit id (request id, approve id, datalink id).
	Invalid uint8 = 0xFF

	// HostID is the datalink id of the host. The host always owns block 0.
	HostID uint8 = 0

	// Slot table limits
	BlockCapacity = 4
	BlockBits     = 4
	// MaxBlocks is bounded by the 4-bit NumBlocks field of NetInfo.
	MaxBlocks = 1<<BlockBits - 1

	// Track ids carried by TrackInfo/Position/Velocity are 12 bits wide.
	TrackIDBits = 12
	MaxTrackID  = 1<<TrackIDBits - 1

	// Quantization of positions and velocities (16 bits per axis)
	AxisBits       = 16
	PositionScale  = 3
	PositionOffset = 10000
	VelocityScale  = 45
	VelocityOffset = 750

	// IFFRadius is the distance under which a position counts as friendly.
	IFFRadius = 150.0
)
