package memory

import (
	"errors"
	"testing"

	"github.com/Adarsh7825/DevShares/backend/model"
)

func TestTicketStore_PopConsumesInOrder(t *testing.T) {
	s := NewTicketStore()

	code := s.Put([]model.StoredFile{
		{ID: "k1", Name: "a.txt", Size: 1},
		{ID: "k2", Name: "b.txt", Size: 2},
	})
	if len(code) != 4 {
		t.Fatalf("expected 4-digit code, got %q", code)
	}

	file, remaining, err := s.Pop(code)
	if err != nil {
		t.Fatal(err)
	}
	if file.Name != "a.txt" || remaining != 1 {
		t.Errorf("first pop should return a.txt with 1 remaining, got %q/%d", file.Name, remaining)
	}

	file, remaining, err = s.Pop(code)
	if err != nil {
		t.Fatal(err)
	}
	if file.Name != "b.txt" || remaining != 0 {
		t.Errorf("second pop should return b.txt with 0 remaining, got %q/%d", file.Name, remaining)
	}

	if _, _, err = s.Pop(code); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("exhausted ticket should be gone, got %v", err)
	}
}

func TestTicketStore_PopUnknownCode(t *testing.T) {
	s := NewTicketStore()
	if _, _, err := s.Pop("0000"); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestTicketStore_TakeIsFinal(t *testing.T) {
	s := NewTicketStore()
	code := s.Put([]model.StoredFile{{ID: "k1", Name: "a.txt"}})

	ticket, ok := s.Take(code)
	if !ok || len(ticket.Files) != 1 {
		t.Fatalf("expected to take whole ticket, got %v %v", ticket, ok)
	}

	// A racing consumer finds nothing once the ticket is taken.
	if _, ok = s.Take(code); ok {
		t.Error("second take should find nothing")
	}
	if _, _, err := s.Pop(code); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("pop after take should fail, got %v", err)
	}
}
