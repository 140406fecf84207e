package protocol

import "fmt"

// Kind is the 4-bit discriminant at the start of every frame.
type Kind uint8

const (
	KindNetInfo Kind = iota
	KindJoinRequest
	KindLeaveNetwork
	KindTrackID
	KindTrackPosition
	KindTrackVelocity
	KindReadyAttackTime
	KindTrackInfo
	KindAssignAttackTarget
	KindIFFPosition
	KindInterceptTaskAssign

	numKinds
)

var kindNames = [numKinds]string{
	KindNetInfo:             "NetInfo",
	KindJoinRequest:         "JoinRequest",
	KindLeaveNetwork:        "LeaveNetwork",
	KindTrackID:             "TrackID",
	KindTrackPosition:       "TrackPosition",
	KindTrackVelocity:       "TrackVelocity",
	KindReadyAttackTime:     "ReadyAttackTime",
	KindTrackInfo:           "TrackInfo",
	KindAssignAttackTarget:  "AssignAttackTarget",
	KindIFFPosition:         "IFFPosition",
	KindInterceptTaskAssign: "InterceptTaskAssign",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a message in the catalog.
func (k Kind) Valid() bool { return k < numKinds }

// Message is one datalink message. Every message fits a single 64-bit frame.
type Message interface {
	Kind() Kind
	marshal(c *cursor)
}

type decoder func(c *cursor) Message

var decoders = [numKinds]decoder{
	KindNetInfo:             decodeNetInfo,
	KindJoinRequest:         decodeJoinRequest,
	KindLeaveNetwork:        decodeLeaveNetwork,
	KindTrackID:             decodeTrackID,
	KindTrackPosition:       decodeTrackPosition,
	KindTrackVelocity:       decodeTrackVelocity,
	KindReadyAttackTime:     decodeReadyAttackTime,
	KindTrackInfo:           decodeTrackInfo,
	KindAssignAttackTarget:  decodeAssignAttackTarget,
	KindIFFPosition:         decodeIFFPosition,
	KindInterceptTaskAssign: decodeInterceptTaskAssign,
}

// Encode serialises m into a frame. It only fails with ErrOverflow, which
// means a message layout is wider than 64 bits.
func Encode(m Message) (uint64, error) {
	w := &Word{}
	c := &cursor{w: w}
	c.put(uint64(m.Kind()), KindBits)
	m.marshal(c)
	if c.err != nil {
		return 0, fmt.Errorf("encode %v: %w", m.Kind(), c.err)
	}
	return w.Value, nil
}

// MustEncode is like Encode but panics on a layout error.
func MustEncode(m Message) uint64 {
	frame, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return frame
}

// PeekKind returns the discriminant of a frame without decoding it.
func PeekKind(frame uint64) Kind {
	return Kind(frame & mask(KindBits))
}

// Decode parses a frame. Unknown discriminants return ErrUnknownKind; the
// caller should drop the frame.
func Decode(frame uint64) (Message, error) {
	k := PeekKind(frame)
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	c := &cursor{w: NewWord(frame)}
	c.take(KindBits)
	m := decoders[k](c)
	if c.err != nil {
		return nil, fmt.Errorf("decode %v: %w", k, c.err)
	}
	return m, nil
}
