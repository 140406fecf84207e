package datalink

import (
	"time"

	proto "github.com/ystepanoff/fleetlink/protocol"
)

// Track is the shared kinematic state of one contact.
type Track struct {
	TrackID   uint16            `json:"track_id"`
	ContactID uint32            `json:"contact_id"`
	Type      proto.ContactType `json:"type"`
	Position  proto.Vec3        `json:"position"`
	Velocity  proto.Vec3        `json:"velocity"`
	Updated   time.Time         `json:"updated"`
	Allied    bool              `json:"allied"`
}

func newTrack(id uint16) *Track {
	return &Track{TrackID: id, Type: proto.ContactInvalid, Allied: true}
}

// PositionAt dead-reckons the track to now.
func (t Track) PositionAt(now time.Time) proto.Vec3 {
	if t.Updated.IsZero() {
		return t.Position
	}
	dt := now.Sub(t.Updated).Seconds()
	return t.Position.Add(t.Velocity.Scale(dt))
}

// stamp moves the update time forward, never back.
func (t *Track) stamp(ts time.Time) {
	if ts.After(t.Updated) {
		t.Updated = ts
	}
}

// Contact is one locally sensed contact from the sensor feed.
type Contact struct {
	ID       int64
	Type     proto.ContactType
	Position proto.Vec3
	Velocity proto.Vec3
}

// CrunchID reduces a 64-bit contact id to its 32-bit network form.
func CrunchID(contact int64) uint32 {
	return uint32(uint64(contact) >> 32)
}

// TrackStore holds every track ever referenced and the contact to track id map.
type TrackStore struct {
	tracks map[uint16]*Track
	order  []uint16

	ids     map[uint32]uint16
	pending map[uint32]uint32 // contact id -> tick the request was queued

	nextTrackID uint16
}

func newTrackStore() *TrackStore {
	return &TrackStore{
		tracks:  make(map[uint16]*Track),
		ids:     make(map[uint32]uint16),
		pending: make(map[uint32]uint32),
	}
}

// get returns the track, creating a zeroed one on first reference.
func (s *TrackStore) get(id uint16) *Track {
	if t, ok := s.tracks[id]; ok {
		return t
	}
	t := newTrack(id)
	s.tracks[id] = t
	s.order = append(s.order, id)
	return t
}

func (s *TrackStore) lookup(id uint16) (Track, bool) {
	t, ok := s.tracks[id]
	if !ok {
		return Track{}, false
	}
	return *t, true
}

func (s *TrackStore) all() []Track {
	out := make([]Track, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tracks[id])
	}
	return out
}

// mint hands out the next track id. Ids stay within the 12-bit field and
// skip 0, which is the request sentinel.
func (s *TrackStore) mint(contact uint32) uint16 {
	if s.nextTrackID == 0 || s.nextTrackID > proto.MaxTrackID {
		s.nextTrackID = 1
	}
	id := s.nextTrackID
	s.nextTrackID++
	s.ids[contact] = id
	return id
}

func (d *Datalink) handleTrackID(m proto.TrackID) {
	if !m.IsRequest() {
		d.tracks.ids[m.ContactID] = m.TrackID
		delete(d.tracks.pending, m.ContactID)
		return
	}
	if !d.host {
		return
	}

	id, ok := d.tracks.ids[m.ContactID]
	if !ok {
		id = d.tracks.mint(m.ContactID)
	}
	if err := d.outbox.Push(proto.TrackID{TrackID: id, ContactID: m.ContactID}); err != nil {
		d.logf("track id reply for %d: %v", m.ContactID, err)
	}
}

func (d *Datalink) handleTrackInfo(m proto.TrackInfo) {
	t := d.tracks.get(m.TrackID)
	t.ContactID = m.ContactID
	t.Type = m.ContactType
	t.Allied = m.Allied
	t.stamp(d.cfg.Now())
}

func (d *Datalink) handleTrackPosition(m proto.TrackPosition) {
	t := d.tracks.get(m.TrackID)
	t.Position = m.Position
	t.stamp(d.cfg.Now())
}

func (d *Datalink) handleTrackVelocity(m proto.TrackVelocity) {
	t := d.tracks.get(m.TrackID)
	t.Velocity = m.Velocity
	t.stamp(d.cfg.Now())
}

// NetID resolves a local contact id to its network track id. The host mints
// ids on demand. A member asks the host and reports false until the answer
// arrives; callers retry on a later tick.
func (d *Datalink) NetID(contact int64) (uint16, bool) {
	c := CrunchID(contact)
	if id, ok := d.tracks.ids[c]; ok {
		return id, true
	}

	if d.host {
		return d.tracks.mint(c), true
	}

	if at, ok := d.tracks.pending[c]; ok {
		if d.sched.Tick < at {
			// A resync moved the clock back; wait a full timeout from here.
			d.tracks.pending[c] = d.sched.Tick
			return 0, false
		}
		if d.sched.Tick-at < d.cfg.TrackRequestTimeout {
			return 0, false
		}
	}
	if d.outbox.Any(func(m proto.Message) bool {
		tid, ok := m.(proto.TrackID)
		return ok && tid.IsRequest() && tid.ContactID == c
	}) {
		return 0, false
	}

	if err := d.outbox.Push(proto.TrackID{TrackID: 0, ContactID: c}); err != nil {
		d.logf("track id request for %d: %v", c, err)
		return 0, false
	}
	d.tracks.pending[c] = d.sched.Tick
	return 0, false
}

// PublishContact records a locally sensed contact and shares it with the
// network. It reports false while the contact has no network id yet.
func (d *Datalink) PublishContact(c Contact, allied bool) bool {
	id, ok := d.NetID(c.ID)
	if !ok {
		return false
	}

	t := d.tracks.get(id)
	t.ContactID = CrunchID(c.ID)
	t.Type = c.Type
	t.Position = c.Position
	t.Velocity = c.Velocity
	t.Allied = allied
	t.stamp(d.cfg.Now())

	for _, m := range []proto.Message{
		proto.TrackInfo{TrackID: id, ContactID: t.ContactID, ContactType: c.Type, Allied: allied},
		proto.TrackPosition{TrackID: id, Position: c.Position},
		proto.TrackVelocity{TrackID: id, Velocity: c.Velocity},
	} {
		if err := d.outbox.Push(m); err != nil {
			d.logf("publish track %d: %v", id, err)
		}
	}
	return true
}

// Track returns the state of one track.
func (d *Datalink) Track(id uint16) (Track, bool) { return d.tracks.lookup(id) }

// Tracks returns every known track in order of first reference.
func (d *Datalink) Tracks() []Track { return d.tracks.all() }

// ShipTracks returns the tracks classified as battleships.
func (d *Datalink) ShipTracks() []Track {
	var out []Track
	for _, t := range d.tracks.all() {
		if t.Type == proto.ContactBattleShip {
			out = append(out, t)
		}
	}
	return out
}
