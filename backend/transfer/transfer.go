// Package transfer implements code-keyed file handoff: an upload stores
// files in the blob store under a fresh 4-digit ticket, downloads consume
// the ticket one file at a time, and untouched tickets expire after a TTL.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultTicketTTL     = 24 * time.Hour
	defaultCleanupWindow = 30 * time.Second

	objectPrefix = "file-share"
)

var (
	ErrNoFiles  = errors.New("no files uploaded")
	ErrNotFound = errors.New("files not found or expired")
	ErrUpstream = errors.New("blob store failure")
)

type (
	// ObjectStore is the blob backend. The minio store satisfies it in
	// production; tests plug an in-memory fake.
	ObjectStore interface {
		Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
		Get(ctx context.Context, key string) (io.ReadCloser, error)
		Remove(ctx context.Context, key string) error
	}

	Tickets interface {
		Put(files []model.StoredFile) string
		Pop(code string) (model.StoredFile, int, error)
		Take(code string) (*model.Ticket, bool)
	}

	Config struct {
		Tickets   Tickets
		Blobs     ObjectStore
		Logger    *zerolog.Logger
		TicketTTL time.Duration
	}

	Service struct {
		tickets Tickets
		blobs   ObjectStore
		logger  zerolog.Logger
		ttl     time.Duration

		// afterFunc is swappable so tests can fire expiry synchronously.
		afterFunc func(time.Duration, func()) *time.Timer
	}

	// UploadFile is one multipart part handed over by the HTTP layer.
	UploadFile struct {
		Name        string
		Size        int64
		ContentType string
		Data        io.Reader
	}
)

func NewService(cfg Config) *Service {
	svc := &Service{
		tickets:   cfg.Tickets,
		blobs:     cfg.Blobs,
		logger:    cfg.Logger.With().Str("component", "transfer").Logger(),
		ttl:       cfg.TicketTTL,
		afterFunc: time.AfterFunc,
	}
	if svc.ttl <= 0 {
		svc.ttl = defaultTicketTTL
	}
	return svc
}

// Upload stores every file in the blob store, registers the ticket and
// arms its expiry timer. On a mid-batch failure the already-stored
// objects are removed and the whole upload fails.
func (svc *Service) Upload(ctx context.Context, files []UploadFile) (string, []model.FileMeta, error) {
	if len(files) == 0 {
		return "", nil, ErrNoFiles
	}

	stored := make([]model.StoredFile, 0, len(files))
	for _, f := range files {
		key := objectKey(f.Name)
		url, err := svc.blobs.Put(ctx, key, f.Data, f.Size, f.ContentType)
		if err != nil {
			svc.logger.Error().Err(err).Str("name", f.Name).Msg("upload failed")
			svc.removeObjects(stored)
			return "", nil, errors.Join(ErrUpstream, err)
		}
		stored = append(stored, model.StoredFile{
			ID:   key,
			Name: f.Name,
			URL:  url,
			Size: f.Size,
		})
	}

	code := svc.tickets.Put(stored)
	svc.afterFunc(svc.ttl, func() { svc.expire(code) })

	metas := make([]model.FileMeta, 0, len(stored))
	for _, f := range stored {
		metas = append(metas, model.FileMeta{Name: f.Name, Size: f.Size})
	}
	svc.logger.Info().Str("code", code).Int("files", len(stored)).Msg("ticket created")
	return code, metas, nil
}

// Download pops the oldest remaining file off the ticket and opens its
// blob. The registry pop commits first, so a concurrent expiry timer or
// second download never double-frees the same file.
func (svc *Service) Download(ctx context.Context, code string) (model.StoredFile, io.ReadCloser, error) {
	file, remaining, err := svc.tickets.Pop(code)
	if err != nil {
		return model.StoredFile{}, nil, ErrNotFound
	}

	rc, err := svc.blobs.Get(ctx, file.ID)
	if err != nil {
		svc.logger.Error().Err(err).Str("code", code).Str("key", file.ID).Msg("download failed")
		return model.StoredFile{}, nil, errors.Join(ErrUpstream, err)
	}
	svc.logger.Debug().
		Str("code", code).
		Str("name", file.Name).
		Int("remaining", remaining).
		Msg("file downloaded")
	return file, rc, nil
}

// expire takes the ticket out of the registry, then destroys its blobs.
func (svc *Service) expire(code string) {
	ticket, ok := svc.tickets.Take(code)
	if !ok {
		return
	}
	svc.logger.Info().Str("code", code).Int("files", len(ticket.Files)).Msg("ticket expired")
	svc.removeObjects(ticket.Files)
}

func (svc *Service) removeObjects(files []model.StoredFile) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCleanupWindow)
	defer cancel()
	for _, f := range files {
		if err := svc.blobs.Remove(ctx, f.ID); err != nil {
			svc.logger.Error().Err(err).Str("key", f.ID).Msg("failed to remove object")
		}
	}
}

func objectKey(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("%s/%s-%s%s", objectPrefix, base, uuid.NewString(), filepath.Ext(name))
}
