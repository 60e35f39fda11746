package memory

import (
	"sync"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// TicketStore keeps file-transfer tickets keyed by download code. A
// ticket is consumed destructively one file at a time; removal from this
// map is the commit point, so an expiry timer racing a download finds
// nothing to act on.
type TicketStore struct {
	mx      *sync.Mutex
	tickets map[string]*model.Ticket
	now     func() time.Time
}

func NewTicketStore() *TicketStore {
	return &TicketStore{
		mx:      &sync.Mutex{},
		tickets: make(map[string]*model.Ticket),
		now:     time.Now,
	}
}

// Put registers the files under a fresh 4-digit code.
func (s *TicketStore) Put(files []model.StoredFile) string {
	s.mx.Lock()
	defer s.mx.Unlock()

	code := NewRoomCode()
	s.tickets[code] = &model.Ticket{
		Code:       code,
		Files:      files,
		UploadedAt: s.now(),
	}
	return code
}

// Pop removes and returns the oldest remaining file. The ticket is
// deleted when its list empties.
func (s *TicketStore) Pop(code string) (model.StoredFile, int, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	ticket, ok := s.tickets[code]
	if !ok || len(ticket.Files) == 0 {
		return model.StoredFile{}, 0, ErrTicketNotFound
	}
	file := ticket.Files[0]
	ticket.Files = ticket.Files[1:]
	remaining := len(ticket.Files)
	if remaining == 0 {
		delete(s.tickets, code)
	}
	return file, remaining, nil
}

// Take removes the whole ticket atomically. Used by the expiry path
// before any destructive blob cleanup starts.
func (s *TicketStore) Take(code string) (*model.Ticket, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	ticket, ok := s.tickets[code]
	if !ok {
		return nil, false
	}
	delete(s.tickets, code)
	return ticket, true
}
