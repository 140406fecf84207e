package transport

import (
	proto "github.com/ystepanoff/fleetlink/protocol"
)

// Transmitter encodes messages and hands them to the radio.
type Transmitter struct {
	driver RadioDriver
	sent   uint64
}

func NewTransmitterWithDriver(d RadioDriver) *Transmitter {
	return &Transmitter{driver: d}
}

// Send encodes m and transmits it. A layout overflow is a programming error
// and panics.
func (t *Transmitter) Send(m proto.Message) error {
	frame := proto.MustEncode(m)
	if err := t.driver.Tx(frame); err != nil {
		return err
	}
	t.sent++
	return nil
}

// Sent reports the number of frames handed to the driver.
func (t *Transmitter) Sent() uint64 { return t.sent }
