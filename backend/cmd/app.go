package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Adarsh7825/DevShares/backend/ratelimit"
	httpServer "github.com/Adarsh7825/DevShares/backend/server/http"
	websocketServer "github.com/Adarsh7825/DevShares/backend/server/websocket"
	"github.com/Adarsh7825/DevShares/backend/service"
	"github.com/Adarsh7825/DevShares/backend/storage/blob"
	"github.com/Adarsh7825/DevShares/backend/storage/memory"
	"github.com/Adarsh7825/DevShares/backend/transfer"
	sw "github.com/Adarsh7825/DevShares/backend/switch"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	var (
		apiListenAddr = fs.StringP("api-listen-addr", "a", ":3000", "api listen address")
		wsListenAddr  = fs.StringP("ws-listen-addr", "w", ":8888", "websocket listen address")
		logLevel      = fs.StringP("log-level", "l", "debug", "log level")
		reapInterval  = fs.Duration("reap-interval", 24*time.Hour, "idle code room sweep period")
		roomMaxAge    = fs.Duration("room-max-age", 30*24*time.Hour, "code room retention window")
		ticketTTL     = fs.Duration("ticket-ttl", 24*time.Hour, "file transfer ticket lifetime")
		rateLimit     = fs.Float64("rate-limit", 10, "per-ip request rate limit")
		stunURL       = fs.String("stun-url", "stun:stun.l.google.com:19302", "stun server handed to clients")
		s3Endpoint    = fs.String("s3-endpoint", "localhost:9000", "object store endpoint")
		s3Bucket      = fs.String("s3-bucket", "devshares-files", "object store bucket")
		s3Region      = fs.String("s3-region", "us-east-1", "object store region")
		s3UseSSL      = fs.Bool("s3-use-ssl", false, "use tls for the object store")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	blobStore, err := blob.NewStore(ctx, blob.Config{
		Logger:    &logger,
		Endpoint:  *s3Endpoint,
		AccessKey: envOr("S3_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("S3_SECRET_KEY", "minioadmin"),
		Bucket:    *s3Bucket,
		Region:    *s3Region,
		UseSSL:    *s3UseSSL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to object store")
	}

	musicStore := memory.NewMusicStore()

	svc := service.NewService(service.Config{
		Screens:      memory.NewScreenStore(),
		Codes:        memory.NewCodeStore(),
		Musics:       musicStore,
		Switch:       sw.NewSwitch(&logger),
		Logger:       &logger,
		ReapInterval: *reapInterval,
		RoomMaxAge:   *roomMaxAge,
	})
	transferSvc := transfer.NewService(transfer.Config{
		Tickets:   memory.NewTicketStore(),
		Blobs:     blobStore,
		Logger:    &logger,
		TicketTTL: *ticketTTL,
	})
	limiter := ratelimit.NewPerIP(*rateLimit)

	httpSrv := httpServer.NewServer(httpServer.Config{
		Logger:     &logger,
		Transfer:   transferSvc,
		Music:      musicStore,
		Limiter:    limiter,
		ListenAddr: *apiListenAddr,
		STUNURLs:   []string{*stunURL},
	})
	wsSrv := websocketServer.NewServer(websocketServer.Config{
		Logger:     &logger,
		Relay:      svc,
		Limiter:    limiter,
		ListenAddr: *wsListenAddr,
	})

	var (
		wg   = &sync.WaitGroup{}
		errc = make(chan error, 2)
	)
	wg.Add(3)
	go httpSrv.Run(ctx, wg, errc)
	go wsSrv.Run(ctx, wg, errc)
	go svc.RunReaper(ctx, wg)

	select {
	case err = <-errc:
		logger.Error().Err(err).Msg("unexpected server error, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
