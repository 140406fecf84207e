package protocol

// Status is the admission state of a participant.
type Status uint8

const (
	StatusNone Status = iota
	StatusWaitingForID
	StatusJoined
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "None"
	case StatusWaitingForID:
		return "WaitingForID"
	case StatusJoined:
		return "Joined"
	case StatusDisconnected:
		return "Disconnected"
	}
	return "Unknown"
}

// Participant is this process's identity on the datalink.
type Participant struct {
	ID     uint8
	Block  uint8
	Status Status
}

func NewHost() Participant {
	return Participant{ID: HostID, Block: 1, Status: StatusJoined}
}

func NewMember() Participant {
	return Participant{ID: Invalid, Block: 0, Status: StatusNone}
}

func (p Participant) IsJoined() bool { return p.Status == StatusJoined }

func (p Participant) IsHost() bool { return p.IsJoined() && p.ID == HostID }

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
