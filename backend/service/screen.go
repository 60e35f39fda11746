package service

import (
	"context"
	"encoding/json"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// Screen-share relay. The room is a two-state machine: idle while
// ActiveSharer is empty, sharing otherwise. Signaling payloads (SDP, ICE)
// pass through without inspection.

func (svc *Service) joinScreenRoom(ctx context.Context, connID string, wire model.Wire, ev model.Event) {
	if ev.Room == "" {
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}

	svc.sw.Join(key, connID, wire)
	svc.track(connID, key)
	sharer, users := svc.screens.Join(ev.Room, connID)

	svc.broadcast(ctx, key, "", model.EventUserJoined, model.UserJoinedPayload{
		UserID:       connID,
		ActiveSharer: optionalID(sharer),
		Users:        users,
	})

	// Late joiners learn about an ongoing share directly.
	if sharer != "" {
		svc.unicast(ctx, key, connID, model.EventSharerChanged, model.SharerChangedPayload{
			SharerID: &sharer,
		})
	}
}

func (svc *Service) startSharing(ctx context.Context, connID string, ev model.Event) {
	if ev.Room == "" {
		return
	}
	// First writer wins; a second start-sharing is a silent no-op.
	if !svc.screens.SetSharer(ev.Room, connID) {
		svc.logger.Debug().
			Str("connID", connID).
			Str("roomID", ev.Room).
			Msg("start-sharing ignored, room absent or already sharing")
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}
	svc.broadcast(ctx, key, "", model.EventSharerChanged, model.SharerChangedPayload{
		SharerID: &connID,
	})
}

func (svc *Service) stopSharing(ctx context.Context, connID string, ev model.Event) {
	if ev.Room == "" {
		return
	}
	// Only the active sharer may stop the share.
	if !svc.screens.ClearSharer(ev.Room, connID) {
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}
	svc.broadcast(ctx, key, "", model.EventSharerChanged, model.SharerChangedPayload{
		SharerID: nil,
	})
}

func (svc *Service) relayOffer(ctx context.Context, connID string, ev model.Event) {
	var in model.OfferInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil || in.RecipientID == "" {
		svc.logger.Debug().Str("connID", connID).Msg("malformed offer dropped")
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}
	svc.unicast(ctx, key, in.RecipientID, model.EventOffer, model.OfferOutbound{
		Offer:    in.Offer,
		SharerID: connID,
	})
}

func (svc *Service) relayAnswer(ctx context.Context, connID string, ev model.Event) {
	var in model.AnswerInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed answer dropped")
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventAnswer, model.AnswerOutbound{
		Answer:   in.Answer,
		ViewerID: connID,
	})
}

func (svc *Service) relayCandidate(ctx context.Context, connID string, ev model.Event) {
	var in model.CandidateInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed ice-candidate dropped")
		return
	}
	key := model.RoomKey{Variant: model.VariantScreen, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventICECandidate, model.CandidateOutbound{
		Candidate: in.Candidate,
		SenderID:  connID,
	})
}

func (svc *Service) leaveScreenRoom(ctx context.Context, connID string, key model.RoomKey) {
	res := svc.screens.Leave(key.ID, connID)
	if !res.WasMember || res.Deleted {
		return
	}
	if res.WasSharer {
		svc.broadcast(ctx, key, connID, model.EventSharerChanged, model.SharerChangedPayload{
			SharerID: nil,
		})
	}
	svc.broadcast(ctx, key, connID, model.EventUserLeft, model.UserLeftPayload{
		UserID: connID,
		Users:  res.Users,
	})
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
