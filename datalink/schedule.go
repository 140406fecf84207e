package datalink

// Schedule maps ticks to transmit permission. The cycle is Total ticks long
// and block b owns every tick with tick % Total == b. Block 0 carries the
// host's NetInfo broadcast.
type Schedule struct {
	Tick  uint32
	Total uint8
}

// IsTurn reports whether block owns the current tick. With no agreed cycle
// length nobody has a turn.
func (s Schedule) IsTurn(block uint8) bool {
	if s.Total == 0 {
		return false
	}
	return s.Tick%uint32(s.Total) == uint32(block)
}

// IsBroadcastSlot reports whether the host should send NetInfo this tick.
func (s Schedule) IsBroadcastSlot() bool { return s.IsTurn(0) }

func (s *Schedule) Advance() { s.Tick++ }

// Resync adopts the host's clock and cycle length from a NetInfo frame sent
// on hostTick.
func (s *Schedule) Resync(hostTick uint32, total uint8) {
	s.Tick = hostTick + 1
	s.Total = total
}
