package memory

import (
	"sync"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// MusicStore keeps shared-playback rooms. Rooms created over HTTP carry a
// name and playlist; rooms created implicitly by a socket join get
// defaults. A room is deleted when its last participant leaves.
type MusicStore struct {
	mx    *sync.Mutex
	rooms map[string]*model.MusicRoom
}

func NewMusicStore() *MusicStore {
	return &MusicStore{
		mx:    &sync.Mutex{},
		rooms: make(map[string]*model.MusicRoom),
	}
}

// Create registers a named room and returns its generated code.
func (s *MusicStore) Create(name, createdBy string) model.MusicRoomInfo {
	s.mx.Lock()
	defer s.mx.Unlock()

	room := &model.MusicRoom{
		ID:        NewRoomCode(),
		Name:      name,
		CreatedBy: createdBy,
		Playlist:  []model.TrackRef{},
		Members:   make(map[string]struct{}),
	}
	s.rooms[room.ID] = room
	return roomInfo(room)
}

// Join adds the connection, creating a bare room if absent, and returns
// the playback snapshot for the joiner.
func (s *MusicStore) Join(roomID, connID string) (state model.PlaybackState, participants []string) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		room = &model.MusicRoom{
			ID:      roomID,
			Members: make(map[string]struct{}),
		}
		s.rooms[roomID] = room
	}
	room.Members[connID] = struct{}{}
	state = model.PlaybackState{
		CurrentTrack: room.CurrentTrack,
		IsPlaying:    room.IsPlaying,
		Position:     room.Position,
	}
	return state, participantList(room.Members)
}

func (s *MusicStore) Play(roomID string, track *model.TrackRef, position float64) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	room.CurrentTrack = track
	room.IsPlaying = true
	room.Position = position
	return true
}

func (s *MusicStore) Pause(roomID string, position float64) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	room.IsPlaying = false
	room.Position = position
	return true
}

func (s *MusicStore) Seek(roomID string, position float64) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	room.Position = position
	return true
}

// Leave removes the connection and deletes the room once empty.
func (s *MusicStore) Leave(roomID, connID string) model.MusicLeave {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.MusicLeave{}
	}
	if _, ok = room.Members[connID]; !ok {
		return model.MusicLeave{}
	}
	delete(room.Members, connID)
	if len(room.Members) == 0 {
		delete(s.rooms, roomID)
		return model.MusicLeave{WasMember: true, Deleted: true}
	}
	return model.MusicLeave{WasMember: true, Participants: participantList(room.Members)}
}

func (s *MusicStore) Get(roomID string) (model.MusicRoomInfo, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.MusicRoomInfo{}, ErrRoomNotFound
	}
	return roomInfo(room), nil
}

func (s *MusicStore) List() []model.MusicRoomInfo {
	s.mx.Lock()
	defer s.mx.Unlock()

	out := make([]model.MusicRoomInfo, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, roomInfo(room))
	}
	return out
}

// SetPlaylist replaces the room playlist wholesale.
func (s *MusicStore) SetPlaylist(roomID string, tracks []model.TrackRef) (model.MusicRoomInfo, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.MusicRoomInfo{}, ErrRoomNotFound
	}
	room.Playlist = tracks
	return roomInfo(room), nil
}

func roomInfo(room *model.MusicRoom) model.MusicRoomInfo {
	return model.MusicRoomInfo{
		ID:           room.ID,
		Name:         room.Name,
		CreatedBy:    room.CreatedBy,
		CurrentTrack: room.CurrentTrack,
		IsPlaying:    room.IsPlaying,
		Position:     room.Position,
		Playlist:     append([]model.TrackRef(nil), room.Playlist...),
		Participants: participantList(room.Members),
	}
}

func participantList(m map[string]struct{}) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
