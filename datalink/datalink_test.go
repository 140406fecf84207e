package datalink

import (
	"io"
	"log"
	"reflect"
	"testing"

	"github.com/ystepanoff/fleetlink/driver/stub"
	proto "github.com/ystepanoff/fleetlink/protocol"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}

func hostConfig() Config {
	cfg := quietConfig()
	cfg.Host = true
	return cfg
}

func memberConfig(ids ...uint8) Config {
	cfg := quietConfig()
	i := 0
	cfg.RequestID = func() uint8 {
		id := ids[i%len(ids)]
		i++
		return id
	}
	return cfg
}

func sent(t *testing.T, drv *stub.Driver) []proto.Message {
	t.Helper()
	var out []proto.Message
	for _, f := range drv.GetTxLog() {
		m, err := proto.Decode(f)
		if err != nil {
			t.Fatalf("transmitted invalid frame %#x: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func lastSent(t *testing.T, drv *stub.Driver) proto.Message {
	t.Helper()
	msgs := sent(t, drv)
	if len(msgs) == 0 {
		t.Fatal("nothing transmitted")
	}
	return msgs[len(msgs)-1]
}

func TestNewHost(t *testing.T) {
	d := New(stub.New(), hostConfig())

	want := []TimeBlock{
		{Index: 0, Clients: []uint8{0}},
		{Index: 1, Clients: []uint8{0, 0}},
	}
	if got := d.Blocks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Blocks() = %+v, want %+v", got, want)
	}
	if d.TotalBlocks() != 2 {
		t.Errorf("TotalBlocks() = %d, want 2", d.TotalBlocks())
	}
	if d.Block() != 1 || d.ID() != proto.HostID || d.Status() != proto.StatusJoined || !d.IsHost() {
		t.Errorf("host participant = id %d block %d status %v", d.ID(), d.Block(), d.Status())
	}
}

func TestHostBroadcastsNetInfoInSlotZero(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())

	for i := 0; i < 4; i++ {
		d.Update()
	}

	var ticks []uint32
	for _, m := range sent(t, drv) {
		ni, ok := m.(proto.NetInfo)
		if !ok {
			t.Fatalf("host sent %v with empty outbox", m.Kind())
		}
		if ni.NumBlocks != 2 || ni.NextFreeBlock != 1 || ni.ApproveID != proto.Invalid {
			t.Errorf("NetInfo = %+v", ni)
		}
		ticks = append(ticks, ni.CurrentTick)
	}
	if !reflect.DeepEqual(ticks, []uint32{0, 2}) {
		t.Errorf("NetInfo ticks = %v, want [0 2]", ticks)
	}
	if d.Tick() != 4 {
		t.Errorf("Tick() = %d, want 4", d.Tick())
	}
}

func TestMemberRequestsJoinOnNetInfo(t *testing.T) {
	drv := stub.New()
	d := New(drv, memberConfig(42))

	drv.InjectRx(proto.MustEncode(proto.NetInfo{NextID: 0, NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 100, ApproveID: proto.Invalid}))
	d.Update()

	if got := lastSent(t, drv); got != (proto.JoinRequest{RequestID: 42, Block: 1}) {
		t.Errorf("sent %+v, want JoinRequest{42 1}", got)
	}
	if d.Status() != proto.StatusWaitingForID {
		t.Errorf("Status() = %v, want WaitingForID", d.Status())
	}
	if d.Tick() != 101 || d.TotalBlocks() != 2 {
		t.Errorf("schedule = tick %d total %d, want 101/2", d.Tick(), d.TotalBlocks())
	}
}

func TestHostAdmitsJoinRequest(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())

	drv.InjectRx(proto.MustEncode(proto.JoinRequest{RequestID: 42, Block: 1}))
	d.Update()

	if got := d.Blocks()[1].Clients; !reflect.DeepEqual(got, []uint8{0, 0, 1}) {
		t.Errorf("block 1 clients = %v, want [0 0 1]", got)
	}
	want := proto.NetInfo{NextID: 1, NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 0, ApproveID: 42}
	if got := lastSent(t, drv); got != want {
		t.Errorf("NetInfo = %+v, want %+v", got, want)
	}

	// The approval is announced once.
	d.Update()
	d.Update()
	if got := lastSent(t, drv).(proto.NetInfo).ApproveID; got != proto.Invalid {
		t.Errorf("second NetInfo ApproveID = %d, want %d", got, proto.Invalid)
	}
}

func TestMemberJoinsOnApproval(t *testing.T) {
	drv := stub.New()
	d := New(drv, memberConfig(42))

	drv.InjectRx(proto.MustEncode(proto.NetInfo{NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 100, ApproveID: proto.Invalid}))
	d.Update()
	drv.InjectRx(proto.MustEncode(proto.NetInfo{NextID: 1, NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 102, ApproveID: 42}))
	d.Update()

	if d.Status() != proto.StatusJoined || d.ID() != 1 || d.Block() != 1 {
		t.Errorf("member = id %d block %d status %v, want 1/1/Joined", d.ID(), d.Block(), d.Status())
	}
	// Resynced to 103, which is its own turn, then advanced.
	if d.Tick() != 104 {
		t.Errorf("Tick() = %d, want 104", d.Tick())
	}
}

func TestMemberRetriesWhenDenied(t *testing.T) {
	drv := stub.New()
	d := New(drv, memberConfig(42, 43))

	drv.InjectRx(proto.MustEncode(proto.NetInfo{NumBlocks: 2, NextFreeBlock: 1, ApproveID: proto.Invalid}))
	d.Update()
	drv.InjectRx(proto.MustEncode(proto.NetInfo{NextID: 1, NumBlocks: 2, NextFreeBlock: 2, CurrentTick: 2, ApproveID: 7}))
	d.Update()

	if got := lastSent(t, drv); got != (proto.JoinRequest{RequestID: 43, Block: 2}) {
		t.Errorf("retry = %+v, want JoinRequest{43 2}", got)
	}
	if d.Status() != proto.StatusWaitingForID {
		t.Errorf("Status() = %v, want WaitingForID", d.Status())
	}
}

func TestHostSinglePendingApproval(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())
	d.Update() // tick 0 broadcast

	drv.InjectRx(
		proto.MustEncode(proto.JoinRequest{RequestID: 10, Block: 1}),
		proto.MustEncode(proto.JoinRequest{RequestID: 11, Block: 1}),
	)
	d.Update() // tick 1

	if got := d.Blocks()[1].Clients; !reflect.DeepEqual(got, []uint8{0, 0, 1}) {
		t.Errorf("block 1 clients = %v, want [0 0 1]", got)
	}
	if d.nextID != 1 || d.approveID != 10 {
		t.Errorf("nextID %d approveID %d, want 1/10", d.nextID, d.approveID)
	}

	d.Update() // tick 2 broadcast
	if got := lastSent(t, drv).(proto.NetInfo); got.ApproveID != 10 || got.NextID != 1 {
		t.Errorf("NetInfo = %+v, want approval of 10 as id 1", got)
	}
}

func TestBlockCapacity(t *testing.T) {
	d := New(stub.New(), hostConfig())

	admit := func(req, block uint8) {
		d.handleJoinRequest(proto.JoinRequest{RequestID: req, Block: block})
		d.sendNetInfo()
	}

	admit(1, 1)
	admit(2, 1)
	if got := d.blocks.NextFree(); got != 2 {
		t.Fatalf("NextFree() after filling block 1 = %d, want 2", got)
	}

	// Stale request for the full block: dropped, capacity holds.
	admit(3, 1)
	if n := len(d.blocks.Get(1).Clients); n != proto.BlockCapacity {
		t.Errorf("block 1 has %d clients, want %d", n, proto.BlockCapacity)
	}
	if d.approveID != proto.Invalid || d.nextID != 2 {
		t.Errorf("stale request changed state: approve %d next %d", d.approveID, d.nextID)
	}

	// The next joiner targets the advertised block and creates it.
	admit(4, 2)
	want := []TimeBlock{
		{Index: 0, Clients: []uint8{0}},
		{Index: 1, Clients: []uint8{0, 0, 1, 2}},
		{Index: 2, Clients: []uint8{3}},
	}
	if got := d.Blocks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Blocks() = %+v, want %+v", got, want)
	}
	if d.TotalBlocks() != 3 {
		t.Errorf("TotalBlocks() = %d, want 3", d.TotalBlocks())
	}
	for _, b := range d.Blocks() {
		if len(b.Clients) > proto.BlockCapacity {
			t.Errorf("block %d holds %d clients", b.Index, len(b.Clients))
		}
	}
}

func TestBlockTableLimits(t *testing.T) {
	bt := newHostBlocks()
	if bt.Admit(5, 9) {
		t.Error("Admit() created a non-contiguous block")
	}
	if bt.Admit(0, 9) {
		t.Error("Admit() placed a member in the host's broadcast block")
	}

	id := uint8(1)
	for bt.NextFree() < proto.MaxBlocks {
		if !bt.Admit(bt.NextFree(), id) {
			t.Fatalf("Admit(%d) failed before the network was full", bt.NextFree())
		}
		id++
	}
	if bt.Len() != proto.MaxBlocks {
		t.Errorf("Len() = %d, want %d", bt.Len(), proto.MaxBlocks)
	}
	if bt.Admit(proto.MaxBlocks, id) {
		t.Error("Admit() beyond MaxBlocks succeeded")
	}
}

func TestDisconnect(t *testing.T) {
	drv := stub.New()
	d := New(drv, memberConfig(42))
	drv.InjectRx(proto.MustEncode(proto.NetInfo{NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 0, ApproveID: proto.Invalid}))
	d.Update()
	drv.InjectRx(proto.MustEncode(proto.NetInfo{NextID: 1, NumBlocks: 2, NextFreeBlock: 1, CurrentTick: 2, ApproveID: 42}))
	d.Update() // joins at tick 3, its own turn

	_ = d.Send(proto.ReadyAttackTime{Time: 9})
	d.Disconnect()
	d.Update() // tick 4: not its turn
	d.Update() // tick 5: leaves instead of sending the queued message

	if got := lastSent(t, drv); got != (proto.LeaveNetwork{Block: 1, ID: 1}) {
		t.Errorf("last sent = %+v, want LeaveNetwork{1 1}", got)
	}
	if d.Status() != proto.StatusDisconnected {
		t.Errorf("Status() = %v, want Disconnected", d.Status())
	}

	n := len(drv.GetTxLog())
	drv.InjectRx(proto.MustEncode(proto.NetInfo{NumBlocks: 2, CurrentTick: 6}))
	for i := 0; i < 4; i++ {
		d.Update()
	}
	if len(drv.GetTxLog()) != n {
		t.Error("disconnected participant kept transmitting")
	}
	if d.Tick() != 5 {
		t.Errorf("disconnected participant kept processing: tick %d, want 5", d.Tick())
	}
}

func TestDisconnectBeforeJoining(t *testing.T) {
	d := New(stub.New(), memberConfig(1))
	d.Disconnect()
	if d.Status() != proto.StatusDisconnected {
		t.Errorf("Status() = %v, want Disconnected", d.Status())
	}
}

func TestHostRemovesLeavingParticipant(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())
	d.handleJoinRequest(proto.JoinRequest{RequestID: 5, Block: 1})

	drv.InjectRx(proto.MustEncode(proto.LeaveNetwork{Block: 1, ID: 1}))
	d.Update()

	if got := d.Blocks()[1].Clients; !reflect.DeepEqual(got, []uint8{0, 0}) {
		t.Errorf("block 1 clients = %v, want [0 0]", got)
	}
}

func TestApplicationMessagesReachInbox(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())

	drv.InjectRx(
		proto.MustEncode(proto.AssignAttackTarget{TargetID: 3}),
		0xE, // unknown kind, dropped
		proto.MustEncode(proto.InterceptTaskAssign{TargetID: 1, ContactID: 2, InterceptorID: 3, Ring: 1}),
	)
	d.Update()

	msgs := d.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() = %+v, want 2 messages", msgs)
	}
	if msgs[0].Kind() != proto.KindAssignAttackTarget || msgs[1].Kind() != proto.KindInterceptTaskAssign {
		t.Errorf("Messages() kinds = %v, %v", msgs[0].Kind(), msgs[1].Kind())
	}
	if len(d.Messages()) != 0 {
		t.Error("Messages() did not drain the inbox")
	}
}

func TestOneFramePerTick(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())
	for i := 0; i < 10; i++ {
		_ = d.Send(proto.ReadyAttackTime{Time: uint32(i)})
	}

	for i := 0; i < 20; i++ {
		before := len(drv.GetTxLog())
		d.Update()
		if n := len(drv.GetTxLog()) - before; n > 1 {
			t.Fatalf("tick %d transmitted %d frames", i, n)
		}
	}
	if d.OutboxStats().Queued != 0 {
		t.Errorf("outbox still holds %d messages", d.OutboxStats().Queued)
	}
}

func TestHostRejectsJoinForBroadcastBlock(t *testing.T) {
	drv := stub.New()
	d := New(drv, hostConfig())

	drv.InjectRx(proto.MustEncode(proto.JoinRequest{RequestID: 9, Block: 0}))
	d.Update()

	if got := d.Blocks()[0].Clients; !reflect.DeepEqual(got, []uint8{0}) {
		t.Errorf("block 0 clients = %v, want [0]", got)
	}
	if d.approveID != proto.Invalid {
		t.Errorf("approveID = %d, want none", d.approveID)
	}
}

func TestHostIDsSkipReserved(t *testing.T) {
	d := New(stub.New(), hostConfig())

	var ids []uint8
	for i := 0; i < 300; i++ {
		d.handleJoinRequest(proto.JoinRequest{RequestID: 7, Block: 1})
		if d.approveID != 7 {
			t.Fatalf("admission %d refused", i+1)
		}
		id := d.nextID
		if id == proto.HostID || id == proto.Invalid {
			t.Fatalf("admission %d assigned reserved id %d", i+1, id)
		}
		ids = append(ids, id)
		d.handleLeaveNetwork(proto.LeaveNetwork{Block: 1, ID: id})
		d.sendNetInfo()
	}

	if got := ids[252:256]; !reflect.DeepEqual(got, []uint8{253, 254, 1, 2}) {
		t.Errorf("ids around the wrap = %v, want [253 254 1 2]", got)
	}
}

func TestHostIDsSkipHeld(t *testing.T) {
	d := New(stub.New(), hostConfig())

	d.handleJoinRequest(proto.JoinRequest{RequestID: 7, Block: 1})
	d.sendNetInfo()
	d.nextID = 254

	d.handleJoinRequest(proto.JoinRequest{RequestID: 8, Block: 1})
	if d.nextID != 2 {
		t.Errorf("assigned id %d, want 2", d.nextID)
	}
}

func TestHostRefusesWhenIDsExhausted(t *testing.T) {
	d := New(stub.New(), hostConfig())
	for id := 1; id < int(proto.Invalid); id++ {
		d.blocks.blocks[1].Clients = append(d.blocks.blocks[1].Clients, uint8(id))
	}
	d.blocks.blocks = append(d.blocks.blocks, TimeBlock{Index: 2})

	d.handleJoinRequest(proto.JoinRequest{RequestID: 7, Block: 2})
	if d.approveID != proto.Invalid {
		t.Errorf("approveID = %d, want none", d.approveID)
	}
	if len(d.Blocks()[2].Clients) != 0 {
		t.Errorf("block 2 clients = %v, want none", d.Blocks()[2].Clients)
	}
}
