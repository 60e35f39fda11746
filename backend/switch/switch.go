// Package _switch fans events out to the wires of a room. It is pure
// transport: no room state lives here, and an event whose destination is
// missing is dropped.
package _switch

import (
	"context"
	"sync"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
	"github.com/rs/zerolog"
)

const (
	defaultFwdTimout = time.Second
)

type Switch struct {
	logger zerolog.Logger
	mx     *sync.RWMutex
	fwd    map[model.RoomKey]map[string]model.Wire
}

func NewSwitch(logger *zerolog.Logger) *Switch {
	return &Switch{
		logger: logger.With().Str("component", "switch").Logger(),
		mx:     &sync.RWMutex{},
		fwd:    make(map[model.RoomKey]map[string]model.Wire),
	}
}

func (sw *Switch) Join(key model.RoomKey, connID string, wire model.Wire) {
	sw.mx.Lock()
	defer func() {
		sw.mx.Unlock()
		sw.logger.Debug().
			Stringer("room", key).
			Str("connID", connID).
			Msg("endpoint connected")
	}()

	room, ok := sw.fwd[key]
	if !ok {
		room = make(map[string]model.Wire)
		sw.fwd[key] = room
	}
	room[connID] = wire
}

func (sw *Switch) Leave(key model.RoomKey, connID string) {
	sw.mx.Lock()
	defer func() {
		sw.mx.Unlock()
		sw.logger.Debug().
			Stringer("room", key).
			Str("connID", connID).
			Msg("endpoint disconnected")
	}()

	room, ok := sw.fwd[key]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(sw.fwd, key)
	}
}

// Broadcast forwards the event to every wire in the room except ev.SRC.
// Events with an empty SRC reach every member.
func (sw *Switch) Broadcast(ctx context.Context, key model.RoomKey, ev model.Event) {
	ev.DST = "" // clear dst just in case
	if !sw.forward(ctx, key, ev) {
		sw.logger.Debug().
			Stringer("room", key).
			Str("type", ev.Type).
			Str("src", ev.SRC).
			Msg("broadcast did not reach anyone")
	}
}

// Unicast forwards the event to a single recipient in the room.
func (sw *Switch) Unicast(ctx context.Context, key model.RoomKey, dst string, ev model.Event) {
	ev.DST = dst
	if !sw.forward(ctx, key, ev) {
		sw.logger.Debug().
			Stringer("room", key).
			Str("type", ev.Type).
			Str("dst", dst).
			Msg("unicast was dropped, recipient not found")
	}
}

func (sw *Switch) forward(ctx context.Context, key model.RoomKey, ev model.Event) bool {
	var (
		sent   bool
		logger = sw.logger.With().
			Stringer("room", key).
			Str("type", ev.Type).
			Str("src", ev.SRC).Logger()
	)

	sw.mx.RLock()
	room := sw.fwd[key]
	wires := make(map[string]model.Wire, len(room))
	for id, wire := range room {
		wires[id] = wire
	}
	sw.mx.RUnlock()

	if ev.DST == "" {
		for dst, wire := range wires {
			if dst != ev.SRC {
				evSent, canceled := send(ctx, ev, wire.TX, &logger)
				if canceled {
					break
				}
				if evSent {
					sent = true
				}
			}
		}
	} else {
		wire, ok := wires[ev.DST]
		if !ok {
			logger.Debug().Str("dst", ev.DST).Msg("cannot forward, dst not found")
		} else {
			sent, _ = send(ctx, ev, wire.TX, &logger)
		}
	}
	return sent
}

func send(ctx context.Context, ev model.Event, tx chan<- model.Event, logger *zerolog.Logger) (bool, bool) {
	var sent, canceled bool
	tCh := time.NewTimer(defaultFwdTimout)
	select {
	case <-ctx.Done():
		canceled = true
	case <-tCh.C:
		logger.Error().Str("dst", ev.DST).Msg("dead endpoint")
	case tx <- ev:
		sent = true
	}
	tCh.Stop()
	return sent, canceled
}
