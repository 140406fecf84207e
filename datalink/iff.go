package datalink

import (
	"time"

	proto "github.com/ystepanoff/fleetlink/protocol"
)

// Friendly is the last self-reported position of a participant.
type Friendly struct {
	DatalinkID uint8      `json:"datalink_id"`
	Position   proto.Vec3 `json:"position"`
	Updated    time.Time  `json:"updated"`
}

func (d *Datalink) handleIFFPosition(m proto.IFFPosition) {
	now := d.cfg.Now()
	for i := range d.friendlies {
		if d.friendlies[i].DatalinkID == m.DatalinkID {
			d.friendlies[i].Position = m.Position
			d.friendlies[i].Updated = now
			return
		}
	}
	d.friendlies = append(d.friendlies, Friendly{DatalinkID: m.DatalinkID, Position: m.Position, Updated: now})
}

// BroadcastIFF queues the own position for the other participants.
func (d *Datalink) BroadcastIFF(pos proto.Vec3) error {
	if d.self.Status != proto.StatusJoined {
		return proto.ErrNotJoined
	}
	return d.outbox.Push(proto.IFFPosition{Position: pos, DatalinkID: d.self.ID})
}

// IsFriendly reports whether pos lies within IFFRadius of any friendly.
func (d *Datalink) IsFriendly(pos proto.Vec3) bool {
	for _, f := range d.friendlies {
		if f.Position.Sub(pos).Length() < proto.IFFRadius {
			return true
		}
	}
	return false
}

// HostPosition returns the position last reported by the host.
func (d *Datalink) HostPosition() (proto.Vec3, bool) {
	for _, f := range d.friendlies {
		if f.DatalinkID == proto.HostID {
			return f.Position, true
		}
	}
	return proto.Vec3{}, false
}

func (d *Datalink) Friendlies() []Friendly {
	return append([]Friendly(nil), d.friendlies...)
}
