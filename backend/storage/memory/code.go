package memory

import (
	"sync"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// CodeStore keeps collaborative-editing rooms. Unlike the other variants,
// rooms survive their last member leaving so a solo author can resume;
// the idle reaper deletes them once lastActiveAt is old enough.
type CodeStore struct {
	mx    *sync.Mutex
	rooms map[string]*model.CodeRoom
	now   func() time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		mx:    &sync.Mutex{},
		rooms: make(map[string]*model.CodeRoom),
		now:   time.Now,
	}
}

// Join adds the connection, creating the room with the default document
// if absent, and returns the authoritative snapshot for the joiner.
func (s *CodeStore) Join(roomID, connID string) (snap model.RoomStatePayload, users []model.MemberInfo) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		room = &model.CodeRoom{
			ID:       roomID,
			Code:     model.DefaultCode,
			Language: model.DefaultLanguage,
			Members:  make(map[string]model.MemberInfo),
		}
		s.rooms[roomID] = room
	}
	room.Members[connID] = model.MemberInfo{ID: connID}
	room.LastActiveAt = s.now()
	return model.RoomStatePayload{Code: room.Code, Language: room.Language}, memberList(room.Members)
}

// SetCode overwrites the document. Last write wins.
func (s *CodeStore) SetCode(roomID, code string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	room.Code = code
	room.LastActiveAt = s.now()
	return true
}

func (s *CodeStore) SetLanguage(roomID, language string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	room.Language = language
	room.LastActiveAt = s.now()
	return true
}

// Leave removes the connection but keeps the room and its document.
func (s *CodeStore) Leave(roomID, connID string) (users []model.MemberInfo, wasMember bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	if _, ok = room.Members[connID]; !ok {
		return nil, false
	}
	delete(room.Members, connID)
	room.LastActiveAt = s.now()
	return memberList(room.Members), true
}

func (s *CodeStore) Get(roomID string) (model.CodeRoom, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.CodeRoom{}, ErrRoomNotFound
	}
	snap := *room
	snap.Members = cloneMembers(room.Members)
	return snap, nil
}

// ReapIdle deletes rooms whose last activity is older than maxAge and
// returns their ids. Members, if any, are not notified.
func (s *CodeStore) ReapIdle(maxAge time.Duration) []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	var reaped []string
	cutoff := s.now().Add(-maxAge)
	for id, room := range s.rooms {
		if room.LastActiveAt.Before(cutoff) {
			delete(s.rooms, id)
			reaped = append(reaped, id)
		}
	}
	return reaped
}
