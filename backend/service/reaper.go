package service

import (
	"context"
	"sync"
	"time"
)

// RunReaper sweeps code rooms on a fixed period and deletes the ones idle
// for longer than the configured maximum age. Screen and music rooms are
// not swept; they are deleted when their last member leaves.
func (svc *Service) RunReaper(ctx context.Context, wg *sync.WaitGroup) {
	defer func() {
		svc.logger.Debug().Msg("reaper stopped")
		wg.Done()
	}()

	ticker := time.NewTicker(svc.reapInterval)
	defer ticker.Stop()

	svc.logger.Info().
		Dur("interval", svc.reapInterval).
		Dur("maxAge", svc.roomMaxAge).
		Msg("reaper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range svc.codes.ReapIdle(svc.roomMaxAge) {
				svc.logger.Info().Str("roomID", id).Msg("idle code room reaped")
			}
		}
	}
}
