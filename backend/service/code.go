package service

import (
	"context"
	"encoding/json"

	"github.com/Adarsh7825/DevShares/backend/model"
)

// Collaborative-editing relay. The registry snapshot is last-writer-wins;
// relayed changes are tagged with the originating connection so clients
// can ignore their own echo.

func (svc *Service) joinCodeRoom(ctx context.Context, connID string, wire model.Wire, ev model.Event) {
	if ev.Room == "" {
		return
	}
	key := model.RoomKey{Variant: model.VariantCode, ID: ev.Room}

	svc.sw.Join(key, connID, wire)
	svc.track(connID, key)
	snap, users := svc.codes.Join(ev.Room, connID)

	// The joiner alone gets the authoritative snapshot, then the whole
	// room sees the updated member list.
	svc.unicast(ctx, key, connID, model.EventRoomState, snap)
	svc.broadcast(ctx, key, "", model.EventCodeUsersUpdate, users)
}

func (svc *Service) codeChange(ctx context.Context, connID string, ev model.Event) {
	var in model.CodeChangeInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed code-change dropped")
		return
	}
	if !svc.codes.SetCode(ev.Room, in.NewCode) {
		return
	}
	key := model.RoomKey{Variant: model.VariantCode, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventCodeChange, model.CodeChangeOutbound{
		NewCode: in.NewCode,
		Source:  connID,
	})
}

func (svc *Service) languageChange(ctx context.Context, connID string, ev model.Event) {
	var in model.LanguageChangeInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed language-change dropped")
		return
	}
	if !svc.codes.SetLanguage(ev.Room, in.NewLanguage) {
		return
	}
	key := model.RoomKey{Variant: model.VariantCode, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventLanguageChange, model.LanguageChangeOutbound{
		NewLanguage: in.NewLanguage,
		Source:      connID,
	})
}

// selectionChange is a pure relay; cursors are ephemeral and never stored.
func (svc *Service) selectionChange(ctx context.Context, connID string, ev model.Event) {
	var in model.SelectionChangeInbound
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		svc.logger.Debug().Str("connID", connID).Msg("malformed selection-change dropped")
		return
	}
	key := model.RoomKey{Variant: model.VariantCode, ID: ev.Room}
	svc.broadcast(ctx, key, connID, model.EventSelectionChange, model.SelectionChangeOutbound{
		Selections: in.Selections,
		Source:     connID,
	})
}

func (svc *Service) leaveCodeRoom(ctx context.Context, connID string, key model.RoomKey) {
	users, wasMember := svc.codes.Leave(key.ID, connID)
	if !wasMember {
		return
	}
	// The room and its document stay behind for returning authors.
	svc.broadcast(ctx, key, connID, model.EventCodeUsersUpdate, users)
}
