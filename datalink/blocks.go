package datalink

import (
	proto "github.com/ystepanoff/fleetlink/protocol"
)

// TimeBlock is one slot of the cycle and the participants sharing it.
type TimeBlock struct {
	Index   uint8   `json:"index"`
	Clients []uint8 `json:"clients"`
}

func (b *TimeBlock) Full() bool { return len(b.Clients) >= proto.BlockCapacity }

// BlockTable is the host's view of slot membership.
type BlockTable struct {
	blocks []TimeBlock
}

// newHostBlocks seeds the table the way every host starts: block 0 holds the
// host alone for network management, block 1 holds two placeholder entries
// and is the host's own data slot.
func newHostBlocks() *BlockTable {
	return &BlockTable{blocks: []TimeBlock{
		{Index: 0, Clients: []uint8{proto.HostID}},
		{Index: 1, Clients: []uint8{proto.HostID, proto.HostID}},
	}}
}

func (t *BlockTable) Len() int { return len(t.blocks) }

func (t *BlockTable) Get(index uint8) *TimeBlock {
	for i := range t.blocks {
		if t.blocks[i].Index == index {
			return &t.blocks[i]
		}
	}
	return nil
}

// NextFree returns the block to advertise for the next joiner: the first
// block other than 0 with spare capacity, else the index a new block would
// take. A full network returns MaxBlocks, which never admits anyone.
func (t *BlockTable) NextFree() uint8 {
	for _, b := range t.blocks {
		if b.Index != 0 && !b.Full() {
			return b.Index
		}
	}
	if len(t.blocks) < proto.MaxBlocks {
		return uint8(len(t.blocks))
	}
	return proto.MaxBlocks
}

// Admit places id in block index, creating the block when index is the next
// unused one. It reports false when the block is full or cannot be created.
// Block 0 belongs to the host alone.
func (t *BlockTable) Admit(index, id uint8) bool {
	if index == 0 {
		return false
	}
	if b := t.Get(index); b != nil {
		if b.Full() {
			return false
		}
		b.Clients = append(b.Clients, id)
		return true
	}
	if int(index) != len(t.blocks) || index >= proto.MaxBlocks {
		return false
	}
	t.blocks = append(t.blocks, TimeBlock{Index: index, Clients: []uint8{id}})
	return true
}

// Holds reports whether id is a client of any block.
func (t *BlockTable) Holds(id uint8) bool {
	for _, b := range t.blocks {
		for _, c := range b.Clients {
			if c == id {
				return true
			}
		}
	}
	return false
}

// Remove drops the first occurrence of id from block index.
func (t *BlockTable) Remove(index, id uint8) bool {
	b := t.Get(index)
	if b == nil {
		return false
	}
	for i, c := range b.Clients {
		if c == id {
			b.Clients = append(b.Clients[:i], b.Clients[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the table.
func (t *BlockTable) Snapshot() []TimeBlock {
	out := make([]TimeBlock, len(t.blocks))
	for i, b := range t.blocks {
		out[i] = TimeBlock{Index: b.Index, Clients: append([]uint8(nil), b.Clients...)}
	}
	return out
}
