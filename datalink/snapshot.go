package datalink

import (
	proto "github.com/ystepanoff/fleetlink/protocol"
	"github.com/ystepanoff/fleetlink/transport"
)

// Snapshot is a read-only picture of a participant, suitable for observers.
type Snapshot struct {
	Tick        uint32                `json:"tick"`
	ID          uint8                 `json:"id"`
	Block       uint8                 `json:"block"`
	Status      proto.Status          `json:"status"`
	Host        bool                  `json:"host"`
	TotalBlocks uint8                 `json:"total_blocks"`
	Blocks      []TimeBlock           `json:"blocks,omitempty"`
	Tracks      []Track               `json:"tracks"`
	Friendlies  []Friendly            `json:"friendlies"`
	Outbox      transport.OutboxStats `json:"outbox"`
}

func (d *Datalink) Snapshot() Snapshot {
	return Snapshot{
		Tick:        d.sched.Tick,
		ID:          d.self.ID,
		Block:       d.self.Block,
		Status:      d.self.Status,
		Host:        d.host,
		TotalBlocks: d.sched.Total,
		Blocks:      d.Blocks(),
		Tracks:      d.Tracks(),
		Friendlies:  d.Friendlies(),
		Outbox:      d.outbox.Stats(),
	}
}
