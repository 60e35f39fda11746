package service

import (
	"testing"

	"github.com/Adarsh7825/DevShares/backend/model"
	"github.com/davecgh/go-spew/spew"
)

func TestCodeRelay_JoinRepliesWithSnapshot(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}

	ev := recvType(t, a, model.EventRoomState)
	var snap model.RoomStatePayload
	mustDecode(t, ev, &snap)
	if snap.Code != model.DefaultCode || snap.Language != model.DefaultLanguage {
		t.Errorf("expected default snapshot, got %s", spew.Sdump(snap))
	}

	ev = recvType(t, a, model.EventCodeUsersUpdate)
	var users []model.MemberInfo
	mustDecode(t, ev, &users)
	if len(users) != 1 || users[0].ID != "a" {
		t.Errorf("expected users {a}, got %s", spew.Sdump(users))
	}
}

func TestCodeRelay_ChangeNotEchoedToSender(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")
	b := connect(t, svc, "b")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	b.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)
	recvType(t, b, model.EventRoomState)

	a.RX <- model.Event{
		Type: model.EventCodeChange, Room: "4321",
		Payload: mustRaw(t, model.CodeChangeInbound{NewCode: "print(1)"}),
	}

	ev := recvType(t, b, model.EventCodeChange)
	var out model.CodeChangeOutbound
	mustDecode(t, ev, &out)
	if out.NewCode != "print(1)" || out.Source != "a" {
		t.Errorf("expected change from a, got %s", spew.Sdump(out))
	}
	assertNone(t, a, model.EventCodeChange)
}

func TestCodeRelay_LateJoinerSeesLatestState(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)

	a.RX <- model.Event{
		Type: model.EventCodeChange, Room: "4321",
		Payload: mustRaw(t, model.CodeChangeInbound{NewCode: "x"}),
	}
	a.RX <- model.Event{
		Type: model.EventLanguageChange, Room: "4321",
		Payload: mustRaw(t, model.LanguageChangeInbound{NewLanguage: "python"}),
	}

	// Re-join to drain a's queue: its room-state reply proves the edits
	// above were applied before b arrives.
	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)

	b := connect(t, svc, "b")
	b.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}

	ev := recvType(t, b, model.EventRoomState)
	var snap model.RoomStatePayload
	mustDecode(t, ev, &snap)
	if snap.Code != "x" || snap.Language != "python" {
		t.Errorf("late joiner should see {x python}, got %s", spew.Sdump(snap))
	}
}

func TestCodeRelay_ChangeOnUnknownRoomDropped(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")
	b := connect(t, svc, "b")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	b.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)
	recvType(t, b, model.EventRoomState)

	a.RX <- model.Event{
		Type: model.EventCodeChange, Room: "0000",
		Payload: mustRaw(t, model.CodeChangeInbound{NewCode: "lost"}),
	}
	assertNone(t, b, model.EventCodeChange)
}

func TestCodeRelay_SelectionIsEphemeral(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")
	b := connect(t, svc, "b")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	b.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)
	recvType(t, b, model.EventRoomState)

	a.RX <- model.Event{
		Type: model.EventSelectionChange, Room: "4321",
		Payload: mustRaw(t, model.SelectionChangeInbound{
			Selections: mustRaw(t, []map[string]int{{"start": 1, "end": 5}}),
		}),
	}

	ev := recvType(t, b, model.EventSelectionChange)
	var out model.SelectionChangeOutbound
	mustDecode(t, ev, &out)
	if out.Source != "a" {
		t.Errorf("selection should be tagged with its source, got %q", out.Source)
	}
	assertNone(t, a, model.EventSelectionChange)
}

func TestCodeRelay_DisconnectKeepsDocument(t *testing.T) {
	svc := newTestService()
	a := connect(t, svc, "a")
	b := connect(t, svc, "b")

	a.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	b.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	recvType(t, a, model.EventRoomState)
	recvType(t, b, model.EventRoomState)

	a.RX <- model.Event{
		Type: model.EventCodeChange, Room: "4321",
		Payload: mustRaw(t, model.CodeChangeInbound{NewCode: "keep me"}),
	}
	recvType(t, b, model.EventCodeChange)

	if err := svc.Disconnect("a"); err != nil {
		t.Fatal(err)
	}

	ev := recvType(t, b, model.EventCodeUsersUpdate)
	var users []model.MemberInfo
	mustDecode(t, ev, &users)
	if len(users) != 1 || users[0].ID != "b" {
		t.Errorf("expected remaining users {b}, got %s", spew.Sdump(users))
	}

	// The document survives for returning authors.
	a2 := connect(t, svc, "a2")
	a2.RX <- model.Event{Type: model.EventJoinCodeRoom, Room: "4321"}
	evState := recvType(t, a2, model.EventRoomState)
	var snap model.RoomStatePayload
	mustDecode(t, evState, &snap)
	if snap.Code != "keep me" {
		t.Errorf("document should survive disconnects, got %q", snap.Code)
	}
}
