package model

import "encoding/json"

// Wire payloads. Inbound/outbound pairs exist where the relay re-tags an
// event with the originating connection before fanning it out.

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

type UserJoinedPayload struct {
	UserID       string       `json:"userId"`
	ActiveSharer *string      `json:"activeSharer"`
	Users        []MemberInfo `json:"users"`
}

type UserLeftPayload struct {
	UserID string       `json:"userId"`
	Users  []MemberInfo `json:"users"`
}

type SharerChangedPayload struct {
	SharerID *string `json:"sharerId"`
}

type OfferInbound struct {
	Offer       json.RawMessage `json:"offer"`
	RecipientID string          `json:"recipientId"`
}

type OfferOutbound struct {
	Offer    json.RawMessage `json:"offer"`
	SharerID string          `json:"sharerId"`
}

type AnswerInbound struct {
	Answer   json.RawMessage `json:"answer"`
	SharerID string          `json:"sharerId"`
}

type AnswerOutbound struct {
	Answer   json.RawMessage `json:"answer"`
	ViewerID string          `json:"viewerId"`
}

type CandidateInbound struct {
	Candidate   json.RawMessage `json:"candidate"`
	RecipientID string          `json:"recipientId"`
}

type CandidateOutbound struct {
	Candidate json.RawMessage `json:"candidate"`
	SenderID  string          `json:"senderId"`
}

type RoomStatePayload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CodeChangeInbound struct {
	NewCode string `json:"newCode"`
}

type CodeChangeOutbound struct {
	NewCode string `json:"newCode"`
	Source  string `json:"source"`
}

type LanguageChangeInbound struct {
	NewLanguage string `json:"newLanguage"`
}

type LanguageChangeOutbound struct {
	NewLanguage string `json:"newLanguage"`
	Source      string `json:"source"`
}

type SelectionChangeInbound struct {
	Selections json.RawMessage `json:"selections"`
}

type SelectionChangeOutbound struct {
	Selections json.RawMessage `json:"selections"`
	Source     string          `json:"source"`
}

type MusicPlayInbound struct {
	Track    *TrackRef `json:"track"`
	Position float64   `json:"position"`
}

type MusicPauseInbound struct {
	Position float64 `json:"position"`
}

type MusicSeekPayload struct {
	Position float64 `json:"position"`
}

type MusicStateUpdatePayload struct {
	IsPlaying bool      `json:"isPlaying"`
	Track     *TrackRef `json:"track,omitempty"`
	Position  float64   `json:"position"`
}
