package service

import (
	"context"
	"encoding/json"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// Playback-sync relay. The registry holds the last known playback state
// for late joiners; there is no clock correction, position drift is the
// client's problem.

func (svc *Service) joinMusicRoom(ctx context.Context, connID string, wire model.Wire, ev model.Event) {
	if ev.Room == "" {
		return
	}
	key := model.RoomKey{Variant: model.VariantMusic, ID: ev.Room}

	svc.sw.Join(key, connID, wire)
	svc.track(connID, key)
	state, participants := svc.musics.Join(ev.Room, connID)

	svc.unicast(ctx, key, connID, model.EventMusicStateSync, state)
	svc.broadcast(ctx, key, "", model.EventParticipantsUpdate, participants)
}

func (svc *Service) musicPlay(ctx context.Context, connID string, ev model.Event) {
	var in model.MusicPlayInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed music-play dropped")
		return
	}
	if !svc.musics.Play(ev.Room, in.Track, in.Position) {
		return
	}
	key := model.RoomKey{Variant: model.VariantMusic, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventMusicStateUpdate, model.MusicStateUpdatePayload{
		IsPlaying: true,
		Track:     in.Track,
		Position:  in.Position,
	})
}

func (svc *Service) musicPause(ctx context.Context, connID string, ev model.Event) {
	var in model.MusicPauseInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed music-pause dropped")
		return
	}
	if !svc.musics.Pause(ev.Room, in.Position) {
		return
	}
	key := model.RoomKey{Variant: model.VariantMusic, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventMusicStateUpdate, model.MusicStateUpdatePayload{
		IsPlaying: false,
		Position:  in.Position,
	})
}

func (svc *Service) musicSeek(ctx context.Context, connID string, ev model.Event) {
	var in model.MusicSeekPayload
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed music-seek dropped")
		return
	}
	if !svc.musics.Seek(ev.Room, in.Position) {
		return
	}
	key := model.RoomKey{Variant: model.VariantMusic, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventMusicSeek, model.MusicSeekPayload{
		Position: in.Position,
	})
}

func (svc *Service) leaveMusicRoom(ctx context.Context, connID string, key model.RoomKey) {
	res := svc.musics.Leave(key.ID, connID)
	if !res.WasMember || res.Deleted {
		return
	}
	svc.broadcast(ctx, key, connID, model.EventParticipantsUpdate, res.Participants)
}
