package protocol

// ContactType classifies a sensed contact. Wire codes are 4 bits wide.
type ContactType uint8

const (
	ContactBattleShip ContactType = 0
	ContactHulk       ContactType = 1
	ContactMissile    ContactType = 2
	ContactAsteroid   ContactType = 5
	ContactFlakShell  ContactType = 7
	ContactAPShell    ContactType = 8
	ContactInvalid    ContactType = 15
)

var contactNames = map[ContactType]string{
	ContactBattleShip: "BattleShip",
	ContactHulk:       "Hulk",
	ContactMissile:    "Missile",
	ContactAsteroid:   "Asteroid",
	ContactFlakShell:  "FlakShell",
	ContactAPShell:    "APShell",
}

func (c ContactType) String() string {
	if n, ok := contactNames[c]; ok {
		return n
	}
	return "Invalid"
}

// contactFromCode maps any unassigned code to ContactInvalid.
func contactFromCode(code uint64) ContactType {
	c := ContactType(code)
	if _, ok := contactNames[c]; ok {
		return c
	}
	return ContactInvalid
}

func (c ContactType) code() uint64 {
	if _, ok := contactNames[c]; ok {
		return uint64(c)
	}
	return uint64(ContactInvalid)
}

func (c ContactType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
