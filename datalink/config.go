package datalink

import (
	"log"
	"time"

	proto "github.com/ystepanoff/fleetlink/protocol"
	"github.com/ystepanoff/fleetlink/transport"
)

// DefaultTrackRequestTimeout is how many ticks a member waits for a track id
// before asking the host again.
const DefaultTrackRequestTimeout = 200

// Config holds the knobs of a Datalink. Zero fields take their defaults.
type Config struct {
	// Host makes this participant the network host (id 0).
	Host bool

	QueueLimit  int
	QueueWarn   int
	QueuePolicy transport.OverflowPolicy

	TrackRequestTimeout uint32

	Now       func() time.Time
	RequestID func() uint8
	Logger    *log.Logger
}

func DefaultConfig() Config {
	return Config{
		QueueLimit:          transport.DefaultQueueLimit,
		QueueWarn:           transport.DefaultQueueWarn,
		QueuePolicy:         transport.DropOldest,
		TrackRequestTimeout: DefaultTrackRequestTimeout,
		Now:                 time.Now,
		RequestID:           proto.GenerateRequestID,
		Logger:              log.Default(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.QueueLimit <= 0 {
		c.QueueLimit = def.QueueLimit
	}
	if c.QueueWarn <= 0 {
		c.QueueWarn = def.QueueWarn
	}
	if c.TrackRequestTimeout == 0 {
		c.TrackRequestTimeout = def.TrackRequestTimeout
	}
	if c.Now == nil {
		c.Now = def.Now
	}
	if c.RequestID == nil {
		c.RequestID = def.RequestID
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	return c
}
