package memory

import (
	"sync"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// ScreenStore keeps screen-share rooms. Every mutation runs to completion
// under the store lock and returns the snapshot the caller broadcasts, so
// concurrent handlers observe linearizable per-room updates.
type ScreenStore struct {
	mx    *sync.Mutex
	rooms map[string]*model.ScreenRoom
}

func NewScreenStore() *ScreenStore {
	return &ScreenStore{
		mx:    &sync.Mutex{},
		rooms: make(map[string]*model.ScreenRoom),
	}
}

// Join adds the connection to the room, creating the room if absent.
func (s *ScreenStore) Join(roomID, connID string) (activeSharer string, users []model.MemberInfo) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		room = &model.ScreenRoom{
			ID:      roomID,
			Members: make(map[string]model.MemberInfo),
		}
		s.rooms[roomID] = room
	}
	room.Members[connID] = model.MemberInfo{ID: connID}
	return room.ActiveSharer, memberList(room.Members)
}

// SetSharer claims the sharer slot. First writer wins; the call is a no-op
// when the room is absent or someone is already sharing.
func (s *ScreenStore) SetSharer(roomID, connID string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.ActiveSharer != "" {
		return false
	}
	room.ActiveSharer = connID
	return true
}

// ClearSharer releases the sharer slot, but only for the connection that
// holds it.
func (s *ScreenStore) ClearSharer(roomID, connID string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.ActiveSharer != connID {
		return false
	}
	room.ActiveSharer = ""
	return true
}

// Leave removes the connection and deletes the room once empty.
func (s *ScreenStore) Leave(roomID, connID string) model.ScreenLeave {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.ScreenLeave{}
	}
	if _, ok = room.Members[connID]; !ok {
		return model.ScreenLeave{}
	}
	delete(room.Members, connID)

	res := model.ScreenLeave{WasMember: true}
	if room.ActiveSharer == connID {
		room.ActiveSharer = ""
		res.WasSharer = true
	}
	if len(room.Members) == 0 {
		delete(s.rooms, roomID)
		res.Deleted = true
		return res
	}
	res.Users = memberList(room.Members)
	return res
}

func (s *ScreenStore) Get(roomID string) (model.ScreenRoom, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.ScreenRoom{}, ErrRoomNotFound
	}
	snap := *room
	snap.Members = cloneMembers(room.Members)
	return snap, nil
}

func memberList(m map[string]model.MemberInfo) []model.MemberInfo {
	users := make([]model.MemberInfo, 0, len(m))
	for _, info := range m {
		users = append(users, info)
	}
	return users
}

func cloneMembers(m map[string]model.MemberInfo) map[string]model.MemberInfo {
	out := make(map[string]model.MemberInfo, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
