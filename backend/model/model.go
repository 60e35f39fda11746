package model

import (
	"encoding/json"
	"time"
)

// Variant identifies a room feature. Each variant has its own registry,
// so the same numeric id can exist in all three namespaces at once.
type Variant string

const (
	VariantScreen Variant = "screen"
	VariantCode   Variant = "code"
	VariantMusic  Variant = "music"
)

// RoomKey qualifies a room id with its variant so the switch never mixes
// members of same-numbered rooms across features.
type RoomKey struct {
	Variant Variant
	ID      string
}

func (k RoomKey) String() string {
	return string(k.Variant) + "/" + k.ID
}

// Event types sent by clients.
const (
	EventJoinRoom        = "join-room"
	EventStartSharing    = "start-sharing"
	EventStopSharing     = "stop-sharing"
	EventOffer           = "offer"
	EventAnswer          = "answer"
	EventICECandidate    = "ice-candidate"
	EventJoinCodeRoom    = "join-code-room"
	EventCodeChange      = "code-change"
	EventLanguageChange  = "language-change"
	EventSelectionChange = "selection-change"
	EventJoinMusicRoom   = "join-music-room"
	EventMusicPlay       = "music-play"
	EventMusicPause      = "music-pause"
	EventMusicSeek       = "music-seek"
)

// Event types sent by server.
const (
	EventConnected          = "connected"
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventSharerChanged      = "sharer-changed"
	EventRoomState          = "room-state"
	EventCodeUsersUpdate    = "code-users-update"
	EventParticipantsUpdate = "participants-update"
	EventMusicStateSync     = "music-state-sync"
	EventMusicStateUpdate   = "music-state-update"
)

// Event is the envelope for everything that travels over the realtime
// channel. Payload stays raw so signaling bodies (SDP, ICE) pass through
// untouched.
type Event struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	SRC     string          `json:"src,omitempty"` // for inbound events server re-assigns this based on websocket session
	DST     string          `json:"dst,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Wire struct {
	RX chan Event
	TX chan Event
}

func NewWire() Wire {
	return Wire{
		RX: make(chan Event),
		TX: make(chan Event),
	}
}

type MemberInfo struct {
	ID string `json:"id"`
}

// ScreenRoom holds screen-share room state. ActiveSharer is empty while
// nobody is sharing.
type ScreenRoom struct {
	ID           string
	ActiveSharer string
	Members      map[string]MemberInfo
}

const (
	DefaultCode     = "// Start coding here..."
	DefaultLanguage = "javascript"
)

// CodeRoom holds the authoritative collaborative document snapshot.
// Last write wins; there is no merge.
type CodeRoom struct {
	ID           string
	Code         string
	Language     string
	Members      map[string]MemberInfo
	LastActiveAt time.Time
}

type TrackRef struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	URL    string `json:"url,omitempty"`
}

// MusicRoom holds shared playback state. Name, CreatedBy and Playlist are
// managed over the HTTP API; the realtime relay only touches playback.
type MusicRoom struct {
	ID           string
	Name         string
	CreatedBy    string
	CurrentTrack *TrackRef
	IsPlaying    bool
	Position     float64
	Playlist     []TrackRef
	Members      map[string]struct{}
}

// MusicRoomInfo is the HTTP view of a music room.
type MusicRoomInfo struct {
	ID           string     `json:"id"`
	Name         string     `json:"roomName"`
	CreatedBy    string     `json:"createdBy"`
	CurrentTrack *TrackRef  `json:"currentTrack"`
	IsPlaying    bool       `json:"isPlaying"`
	Position     float64    `json:"currentPosition"`
	Playlist     []TrackRef `json:"playlist"`
	Participants []string   `json:"participants"`
}

// PlaybackState is replayed to late joiners of a music room.
type PlaybackState struct {
	CurrentTrack *TrackRef `json:"currentTrack"`
	IsPlaying    bool      `json:"isPlaying"`
	Position     float64   `json:"position"`
}

// ScreenLeave describes a screen-share room after a member left.
type ScreenLeave struct {
	WasMember bool
	WasSharer bool
	Users     []MemberInfo
	Deleted   bool
}

// MusicLeave describes a music room after a participant left.
type MusicLeave struct {
	WasMember    bool
	Participants []string
	Deleted      bool
}

// StoredFile is one uploaded file inside a transfer ticket. ID doubles as
// the object-store key.
type StoredFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Ticket maps a 4-digit download code to a queue of uploaded files.
// Downloads consume it front to back.
type Ticket struct {
	Code       string
	Files      []StoredFile
	UploadedAt time.Time
}

type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
