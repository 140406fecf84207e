package transport

import (
	"log"

	proto "github.com/ystepanoff/fleetlink/protocol"
)

// Handler consumes one decoded message.
type Handler func(proto.Message)

// Receiver drains a radio once per tick and dispatches decoded messages to
// per-kind handlers. Kinds without a handler go to the fallback.
type Receiver struct {
	driver   RadioDriver
	logger   *log.Logger
	handlers map[proto.Kind]Handler
	fallback Handler

	received uint64
	dropped  uint64
}

func NewReceiverWithDriver(d RadioDriver, logger *log.Logger) *Receiver {
	if logger == nil {
		logger = log.Default()
	}
	return &Receiver{
		driver:   d,
		logger:   logger,
		handlers: make(map[proto.Kind]Handler),
	}
}

func (r *Receiver) RegisterHandler(kind proto.Kind, h Handler) {
	r.handlers[kind] = h
}

// RegisterFallback sets the handler for kinds with no registered handler.
func (r *Receiver) RegisterFallback(h Handler) { r.fallback = h }

// ProcessFrame decodes one frame and dispatches it. Undecodable frames are
// logged and dropped.
func (r *Receiver) ProcessFrame(frame uint64) {
	m, err := proto.Decode(frame)
	if err != nil {
		r.dropped++
		r.logger.Printf("[Receiver] dropping frame %#016x: %v", frame, err)
		return
	}
	r.received++

	if h, ok := r.handlers[m.Kind()]; ok && h != nil {
		h(m)
		return
	}
	if r.fallback != nil {
		r.fallback(m)
	}
}

// Poll drains the driver and processes every frame. It returns the number of
// frames read.
func (r *Receiver) Poll() int {
	frames, err := r.driver.Rx()
	if err != nil {
		r.logger.Printf("[Receiver] rx failed: %v", err)
	}
	for _, f := range frames {
		r.ProcessFrame(f)
	}
	return len(frames)
}

// Counts returns the number of decoded and dropped frames so far.
func (r *Receiver) Counts() (received, dropped uint64) { return r.received, r.dropped }
