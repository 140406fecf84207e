package transport

import (
	"log"

	proto "github.com/ystepanoff/fleetlink/protocol"
)

// OverflowPolicy selects what Push does when the outbox is full.
type OverflowPolicy uint8

const (
	// DropOldest evicts the head of the queue to make room.
	DropOldest OverflowPolicy = iota
	// DropNewest rejects the pushed message.
	DropNewest
)

const (
	DefaultQueueLimit = 256
	DefaultQueueWarn  = 100
)

// OutboxStats is a snapshot of the outbox counters.
type OutboxStats struct {
	Queued  int
	Pushed  uint64
	Popped  uint64
	Dropped uint64
}

// Outbox is the bounded FIFO of messages waiting for the owner's slot.
type Outbox struct {
	limit  int
	warn   int
	policy OverflowPolicy
	logger *log.Logger

	queue  []proto.Message
	warned bool
	stats  OutboxStats
}

// NewOutbox returns an outbox. Non-positive limit or warn fall back to the defaults.
func NewOutbox(limit, warn int, policy OverflowPolicy, logger *log.Logger) *Outbox {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	if warn <= 0 {
		warn = DefaultQueueWarn
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Outbox{limit: limit, warn: warn, policy: policy, logger: logger}
}

// Push queues m. Under DropNewest a full outbox returns ErrQueueFull.
func (o *Outbox) Push(m proto.Message) error {
	if len(o.queue) >= o.limit {
		o.stats.Dropped++
		if o.policy == DropNewest {
			o.logger.Printf("[Outbox] full (%d), dropping new %v", o.limit, m.Kind())
			return proto.ErrQueueFull
		}
		o.logger.Printf("[Outbox] full (%d), dropping oldest %v", o.limit, o.queue[0].Kind())
		o.queue[0] = nil
		o.queue = o.queue[1:]
	}

	o.queue = append(o.queue, m)
	o.stats.Pushed++

	if len(o.queue) > o.warn && !o.warned {
		o.warned = true
		o.logger.Printf("[Outbox] excessive queue size: %d", len(o.queue))
	}
	return nil
}

// Pop removes and returns the head of the queue.
func (o *Outbox) Pop() (proto.Message, bool) {
	if len(o.queue) == 0 {
		return nil, false
	}
	m := o.queue[0]
	o.queue[0] = nil
	o.queue = o.queue[1:]
	o.stats.Popped++

	if len(o.queue) <= o.warn {
		o.warned = false
	}
	return m, true
}

func (o *Outbox) Len() int { return len(o.queue) }

// Any reports whether a queued message satisfies match.
func (o *Outbox) Any(match func(proto.Message) bool) bool {
	for _, m := range o.queue {
		if match(m) {
			return true
		}
	}
	return false
}

func (o *Outbox) Stats() OutboxStats {
	s := o.stats
	s.Queued = len(o.queue)
	return s
}
