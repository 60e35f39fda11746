package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Adarsh7825/DevShares/backend/storage/memory"
	"github.com/rs/zerolog"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  map[string]error // keyed by file base name substring
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects: make(map[string][]byte),
		putErr:  make(map[string]error),
	}
}

func (s *fakeBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, err := range s.putErr {
		if strings.Contains(key, name) {
			return "", err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "fake://" + key, nil
}

func (s *fakeBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func newTestTransfer(blobs *fakeBlobStore) (*Service, *func()) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	svc := NewService(Config{
		Tickets:   memory.NewTicketStore(),
		Blobs:     blobs,
		Logger:    &logger,
		TicketTTL: time.Hour,
	})
	// Capture the expiry callback instead of arming a real timer.
	var fire func()
	svc.afterFunc = func(_ time.Duration, f func()) *time.Timer {
		fire = f
		return nil
	}
	return svc, &fire
}

func upload(t *testing.T, svc *Service, names ...string) string {
	t.Helper()
	files := make([]UploadFile, 0, len(names))
	for _, name := range names {
		files = append(files, UploadFile{
			Name:        name,
			Size:        int64(len(name)),
			ContentType: "text/plain",
			Data:        strings.NewReader(name),
		})
	}
	code, metas, err := svc.Upload(context.Background(), files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(metas) != len(names) {
		t.Fatalf("expected %d metas, got %d", len(names), len(metas))
	}
	return code
}

func TestUpload_IssuesFourDigitCode(t *testing.T) {
	svc, _ := newTestTransfer(newFakeBlobStore())
	code := upload(t, svc, "a.txt")
	if len(code) != 4 {
		t.Errorf("expected a 4-digit code, got %q", code)
	}
}

func TestUpload_EmptyBatchRejected(t *testing.T) {
	svc, _ := newTestTransfer(newFakeBlobStore())
	if _, _, err := svc.Upload(context.Background(), nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}

func TestDownload_ConsumesFilesInOrder(t *testing.T) {
	svc, _ := newTestTransfer(newFakeBlobStore())
	code := upload(t, svc, "first.txt", "second.txt")

	file, rc, err := svc.Download(context.Background(), code)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if file.Name != "first.txt" || string(body) != "first.txt" {
		t.Errorf("expected first.txt, got %q with body %q", file.Name, body)
	}

	file, rc, err = svc.Download(context.Background(), code)
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()
	if file.Name != "second.txt" {
		t.Errorf("expected second.txt, got %q", file.Name)
	}

	if _, _, err = svc.Download(context.Background(), code); !errors.Is(err, ErrNotFound) {
		t.Errorf("exhausted ticket should report ErrNotFound, got %v", err)
	}
}

func TestDownload_UnknownCode(t *testing.T) {
	svc, _ := newTestTransfer(newFakeBlobStore())
	if _, _, err := svc.Download(context.Background(), "0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpiry_RemovesTicketAndBlobs(t *testing.T) {
	blobs := newFakeBlobStore()
	svc, fire := newTestTransfer(blobs)
	code := upload(t, svc, "a.txt", "b.txt")

	if blobs.count() != 2 {
		t.Fatalf("expected 2 stored objects, got %d", blobs.count())
	}

	(*fire)()

	if blobs.count() != 0 {
		t.Errorf("expiry should remove blobs, %d left", blobs.count())
	}
	if _, _, err := svc.Download(context.Background(), code); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired code should be unreachable, got %v", err)
	}

	// Firing again is a no-op; the ticket is already gone.
	(*fire)()
}

func TestExpiry_SkipsDrainedTicket(t *testing.T) {
	blobs := newFakeBlobStore()
	svc, fire := newTestTransfer(blobs)
	code := upload(t, svc, "a.txt")

	_, rc, err := svc.Download(context.Background(), code)
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()

	(*fire)()

	// The downloaded blob stays put: the drained ticket was already gone
	// from the registry when the timer fired.
	if blobs.count() != 1 {
		t.Errorf("expiry after full drain should not touch blobs, got %d", blobs.count())
	}
}

func TestUpload_MidBatchFailureRollsBack(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.putErr["bad"] = errors.New("disk full")
	svc, _ := newTestTransfer(blobs)

	files := []UploadFile{
		{Name: "ok.txt", Size: 2, ContentType: "text/plain", Data: strings.NewReader("ok")},
		{Name: "bad.txt", Size: 3, ContentType: "text/plain", Data: strings.NewReader("bad")},
	}
	_, _, err := svc.Upload(context.Background(), files)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if blobs.count() != 0 {
		t.Errorf("failed upload should roll back stored objects, %d left", blobs.count())
	}
}
