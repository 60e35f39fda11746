// Package service multiplexes the realtime channel: every inbound event
// resolves a room in the variant's registry, mutates it, then fans out to
// the other members through the switch. One dispatch goroutine per
// connection; each handler completes its mutation before the next event
// of that connection is processed.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
	"github.com/rs/zerolog"
)

const (
	defaultDisconnectTimeout = 2 * time.Second

	defaultReapInterval = 24 * time.Hour
	defaultRoomMaxAge   = 30 * 24 * time.Hour
)

type (
	ScreenRegistry interface {
		Join(roomID, connID string) (activeSharer string, users []model.MemberInfo)
		SetSharer(roomID, connID string) bool
		ClearSharer(roomID, connID string) bool
		Leave(roomID, connID string) model.ScreenLeave
	}

	CodeRegistry interface {
		Join(roomID, connID string) (snap model.RoomStatePayload, users []model.MemberInfo)
		SetCode(roomID, code string) bool
		SetLanguage(roomID, language string) bool
		Leave(roomID, connID string) (users []model.MemberInfo, wasMember bool)
		ReapIdle(maxAge time.Duration) []string
	}

	MusicRegistry interface {
		Join(roomID, connID string) (state model.PlaybackState, participants []string)
		Play(roomID string, track *model.TrackRef, position float64) bool
		Pause(roomID string, position float64) bool
		Seek(roomID string, position float64) bool
		Leave(roomID, connID string) model.MusicLeave
	}

	Switch interface {
		Join(key model.RoomKey, connID string, wire model.Wire)
		Leave(key model.RoomKey, connID string)
		Broadcast(ctx context.Context, key model.RoomKey, ev model.Event)
		Unicast(ctx context.Context, key model.RoomKey, dst string, ev model.Event)
	}

	Config struct {
		Screens      ScreenRegistry
		Codes        CodeRegistry
		Musics       MusicRegistry
		Switch       Switch
		Logger       *zerolog.Logger
		ReapInterval time.Duration
		RoomMaxAge   time.Duration
	}

	Service struct {
		screens ScreenRegistry
		codes   CodeRegistry
		musics  MusicRegistry
		sw      Switch
		logger  zerolog.Logger

		reapInterval time.Duration
		roomMaxAge   time.Duration

		mx *sync.Mutex
		// conns holds the wire of every live connection; membership is
		// the reverse index used at disconnect time so teardown never
		// scans registries.
		conns      map[string]model.Wire
		membership map[string]map[model.RoomKey]struct{}
	}
)

func NewService(cfg Config) *Service {
	svc := &Service{
		screens:      cfg.Screens,
		codes:        cfg.Codes,
		musics:       cfg.Musics,
		sw:           cfg.Switch,
		logger:       cfg.Logger.With().Str("component", "relay").Logger(),
		reapInterval: cfg.ReapInterval,
		roomMaxAge:   cfg.RoomMaxAge,
		mx:           &sync.Mutex{},
		conns:        make(map[string]model.Wire),
		membership:   make(map[string]map[model.RoomKey]struct{}),
	}
	if svc.reapInterval <= 0 {
		svc.reapInterval = defaultReapInterval
	}
	if svc.roomMaxAge <= 0 {
		svc.roomMaxAge = defaultRoomMaxAge
	}
	return svc
}

// Connect registers the connection and starts consuming its inbound
// events. The wire's TX side receives everything addressed to it until
// ctx is canceled.
func (svc *Service) Connect(ctx context.Context, connID string, wire model.Wire) error {
	svc.mx.Lock()
	svc.conns[connID] = wire
	svc.membership[connID] = make(map[model.RoomKey]struct{})
	svc.mx.Unlock()

	svc.logger.Debug().Str("connID", connID).Msg("connection registered")

	go svc.dispatch(ctx, connID, wire)
	return nil
}

// Disconnect clears the connection's membership everywhere it joined and
// runs the variant-specific side effects.
func (svc *Service) Disconnect(connID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultDisconnectTimeout)
	defer cancel()

	svc.mx.Lock()
	keys := svc.membership[connID]
	delete(svc.membership, connID)
	delete(svc.conns, connID)
	svc.mx.Unlock()

	for key := range keys {
		svc.sw.Leave(key, connID)
		switch key.Variant {
		case model.VariantScreen:
			svc.leaveScreenRoom(ctx, connID, key)
		case model.VariantCode:
			svc.leaveCodeRoom(ctx, connID, key)
		case model.VariantMusic:
			svc.leaveMusicRoom(ctx, connID, key)
		}
	}
	svc.logger.Debug().Str("connID", connID).Msg("connection removed")
	return nil
}

// RoomsFor reports the rooms the connection currently belongs to.
func (svc *Service) RoomsFor(connID string) []model.RoomKey {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	keys := make([]model.RoomKey, 0, len(svc.membership[connID]))
	for key := range svc.membership[connID] {
		keys = append(keys, key)
	}
	return keys
}

func (svc *Service) dispatch(ctx context.Context, connID string, wire model.Wire) {
	svc.unicastSelf(ctx, connID, wire, model.Event{
		Type: model.EventConnected,
	}, model.ConnectedPayload{UserID: connID})

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-wire.RX:
			if !ok {
				return
			}
			ev.SRC = connID
			svc.handle(ctx, connID, wire, ev)
		}
	}
}

func (svc *Service) handle(ctx context.Context, connID string, wire model.Wire, ev model.Event) {
	switch ev.Type {
	case model.EventJoinRoom:
		svc.joinScreenRoom(ctx, connID, wire, ev)
	case model.EventStartSharing:
		svc.startSharing(ctx, connID, ev)
	case model.EventStopSharing:
		svc.stopSharing(ctx, connID, ev)
	case model.EventOffer:
		svc.relayOffer(ctx, connID, ev)
	case model.EventAnswer:
		svc.relayAnswer(ctx, connID, ev)
	case model.EventICECandidate:
		svc.relayCandidate(ctx, connID, ev)
	case model.EventJoinCodeRoom:
		svc.joinCodeRoom(ctx, connID, wire, ev)
	case model.EventCodeChange:
		svc.codeChange(ctx, connID, ev)
	case model.EventLanguageChange:
		svc.languageChange(ctx, connID, ev)
	case model.EventSelectionChange:
		svc.selectionChange(ctx, connID, ev)
	case model.EventJoinMusicRoom:
		svc.joinMusicRoom(ctx, connID, wire, ev)
	case model.EventMusicPlay:
		svc.musicPlay(ctx, connID, ev)
	case model.EventMusicPause:
		svc.musicPause(ctx, connID, ev)
	case model.EventMusicSeek:
		svc.musicSeek(ctx, connID, ev)
	default:
		svc.logger.Debug().
			Str("connID", connID).
			Str("type", ev.Type).
			Msg("unknown event type dropped")
	}
}

func (svc *Service) track(connID string, key model.RoomKey) {
	svc.mx.Lock()
	defer svc.mx.Unlock()
	if rooms, ok := svc.membership[connID]; ok {
		rooms[key] = struct{}{}
	}
}

// broadcast fans a typed payload out to the room. Events with an empty
// src reach every member, including the originator.
func (svc *Service) broadcast(ctx context.Context, key model.RoomKey, src, evType string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		svc.logger.Error().Err(err).Str("type", evType).Msg("failed to marshal broadcast payload")
		return
	}
	svc.sw.Broadcast(ctx, key, model.Event{
		Type:    evType,
		Room:    key.ID,
		SRC:     src,
		Payload: b,
	})
}

func (svc *Service) unicast(ctx context.Context, key model.RoomKey, dst, evType string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		svc.logger.Error().Err(err).Str("type", evType).Msg("failed to marshal unicast payload")
		return
	}
	svc.sw.Unicast(ctx, key, dst, model.Event{
		Type:    evType,
		Room:    key.ID,
		Payload: b,
	})
}

// unicastSelf pushes an event straight onto the connection's own wire,
// bypassing the switch. Used before the connection has joined any room.
func (svc *Service) unicastSelf(ctx context.Context, connID string, wire model.Wire, ev model.Event, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		svc.logger.Error().Err(err).Str("type", ev.Type).Msg("failed to marshal payload")
		return
	}
	ev.DST = connID
	ev.Payload = b
	select {
	case wire.TX <- ev:
	case <-ctx.Done():
	}
}
