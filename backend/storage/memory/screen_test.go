package memory

import (
	"testing"
)

func TestScreenStore_JoinCreatesRoom(t *testing.T) {
	s := NewScreenStore()

	sharer, users := s.Join("1234", "conn-1")
	if sharer != "" {
		t.Errorf("expected no active sharer in fresh room, got %q", sharer)
	}
	if len(users) != 1 || users[0].ID != "conn-1" {
		t.Errorf("expected single member conn-1, got %v", users)
	}

	_, users = s.Join("1234", "conn-2")
	if len(users) != 2 {
		t.Errorf("expected 2 members, got %v", users)
	}
	ids := map[string]bool{}
	for _, u := range users {
		ids[u.ID] = true
	}
	if !ids["conn-1"] || !ids["conn-2"] {
		t.Errorf("expected member set {conn-1, conn-2}, got %v", users)
	}
}

func TestScreenStore_SetSharer_FirstWriterWins(t *testing.T) {
	s := NewScreenStore()
	s.Join("1234", "conn-1")
	s.Join("1234", "conn-2")

	if !s.SetSharer("1234", "conn-1") {
		t.Fatal("first SetSharer should succeed")
	}
	if s.SetSharer("1234", "conn-2") {
		t.Error("second SetSharer should be a no-op")
	}

	room, err := s.Get("1234")
	if err != nil {
		t.Fatal(err)
	}
	if room.ActiveSharer != "conn-1" {
		t.Errorf("expected conn-1 to hold the sharer slot, got %q", room.ActiveSharer)
	}
}

func TestScreenStore_SetSharer_UnknownRoom(t *testing.T) {
	s := NewScreenStore()
	if s.SetSharer("9999", "conn-1") {
		t.Error("SetSharer on unknown room should fail")
	}
}

func TestScreenStore_ClearSharer_OnlyHolder(t *testing.T) {
	s := NewScreenStore()
	s.Join("1234", "conn-1")
	s.SetSharer("1234", "conn-1")

	if s.ClearSharer("1234", "conn-2") {
		t.Error("non-holder should not clear the sharer slot")
	}
	if !s.ClearSharer("1234", "conn-1") {
		t.Error("holder should clear the sharer slot")
	}

	room, _ := s.Get("1234")
	if room.ActiveSharer != "" {
		t.Errorf("expected empty sharer after clear, got %q", room.ActiveSharer)
	}
}

func TestScreenStore_Leave(t *testing.T) {
	s := NewScreenStore()
	s.Join("1234", "conn-1")
	s.Join("1234", "conn-2")
	s.SetSharer("1234", "conn-1")

	res := s.Leave("1234", "conn-1")
	if !res.WasMember {
		t.Fatal("conn-1 was a member")
	}
	if !res.WasSharer {
		t.Error("conn-1 held the sharer slot")
	}
	if res.Deleted {
		t.Error("room still has conn-2, should not be deleted")
	}
	if len(res.Users) != 1 || res.Users[0].ID != "conn-2" {
		t.Errorf("expected remaining member conn-2, got %v", res.Users)
	}

	res = s.Leave("1234", "conn-2")
	if !res.Deleted {
		t.Error("room should be deleted once empty")
	}
	if _, err := s.Get("1234"); err == nil {
		t.Error("expected ErrRoomNotFound after deletion")
	}
}

func TestScreenStore_Leave_NotAMember(t *testing.T) {
	s := NewScreenStore()
	s.Join("1234", "conn-1")

	if res := s.Leave("1234", "conn-9"); res.WasMember {
		t.Error("conn-9 never joined")
	}
	if res := s.Leave("9999", "conn-1"); res.WasMember {
		t.Error("room 9999 never existed")
	}
}
