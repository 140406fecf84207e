// Package fleetlink provides a façade over the fleet datalink: a
// time-division broadcast network carrying 64-bit frames between one host
// ship and its missiles.
package fleetlink

import (
	"github.com/ystepanoff/fleetlink/datalink"
	"github.com/ystepanoff/fleetlink/protocol"
	"github.com/ystepanoff/fleetlink/transport"
)

// Re-exported types
type (
	Datalink    = datalink.Datalink
	Config      = datalink.Config
	Track       = datalink.Track
	Contact     = datalink.Contact
	Snapshot    = datalink.Snapshot
	Message     = protocol.Message
	Kind        = protocol.Kind
	Vec3        = protocol.Vec3
	ContactType = protocol.ContactType
	Status      = protocol.Status
	RadioDriver = transport.RadioDriver
)

// Error constants exposed in the public API
var (
	ErrOverflow    = protocol.ErrOverflow
	ErrUnknownKind = protocol.ErrUnknownKind
	ErrQueueFull   = protocol.ErrQueueFull
	ErrNotJoined   = protocol.ErrNotJoined
)

// Constants exposed in the public API
const (
	StatusNone         = protocol.StatusNone
	StatusWaitingForID = protocol.StatusWaitingForID
	StatusJoined       = protocol.StatusJoined
	StatusDisconnected = protocol.StatusDisconnected

	DropOldest = transport.DropOldest
	DropNewest = transport.DropNewest
)
