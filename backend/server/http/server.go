// Package http serves the file-transfer endpoints and the small REST
// surface around music rooms. Everything realtime lives on the websocket
// server; this side only ever touches the disjoint ticket registry and
// the music directory.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Adarsh7825/DevShares/backend/model"
	"github.com/Adarsh7825/DevShares/backend/transfer"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	defaultShutdownDeadline = 10 * time.Second

	maxUploadFiles    = 10
	maxUploadFileSize = 100 << 20 // 100MB per file
	multipartMemory   = 32 << 20
)

var (
	ErrUnexpected = errors.New("unexpected server error")
)

type (
	TransferService interface {
		Upload(ctx context.Context, files []transfer.UploadFile) (string, []model.FileMeta, error)
		Download(ctx context.Context, code string) (model.StoredFile, io.ReadCloser, error)
	}

	MusicDirectory interface {
		Create(name, createdBy string) model.MusicRoomInfo
		Get(roomID string) (model.MusicRoomInfo, error)
		List() []model.MusicRoomInfo
		SetPlaylist(roomID string, tracks []model.TrackRef) (model.MusicRoomInfo, error)
	}

	Limiter interface {
		Allow(ip string) bool
	}

	Config struct {
		Logger     *zerolog.Logger
		Transfer   TransferService
		Music      MusicDirectory
		Limiter    Limiter
		ListenAddr string
		STUNURLs   []string
	}

	Server struct {
		logger   zerolog.Logger
		transfer TransferService
		music    MusicDirectory
		limiter  Limiter
		stunURLs []string
		*http.Server
	}
)

type genericResponse struct {
	Success bool             `json:"success"`
	Code    string           `json:"code,omitempty"`
	Files   []model.FileMeta `json:"files,omitempty"`
	Message string           `json:"message,omitempty"`
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		logger:   cfg.Logger.With().Str("component", "api-server").Logger(),
		transfer: cfg.Transfer,
		music:    cfg.Music,
		limiter:  cfg.Limiter,
		stunURLs: cfg.STUNURLs,
	}

	// OPTIONS is registered on every route so preflights reach the CORS
	// middleware; method-restricted routes would otherwise 405 them
	// before any middleware runs.
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/upload", srv.upload).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/download/{code}", srv.download).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", srv.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ice", srv.iceServers).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/music/create", srv.createMusicRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/music/rooms", srv.listMusicRooms).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/music/room/{roomID}", srv.getMusicRoom).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/music/room/{roomID}/playlist", srv.setPlaylist).Methods(http.MethodPost, http.MethodOptions)

	srv.Server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return srv
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		w.Header().Set("Access-Control-Max-Age", "86400")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (srv *Server) upload(w http.ResponseWriter, r *http.Request) {
	if !srv.limiter.Allow(clientIP(r)) {
		srv.writeJSON(w, http.StatusTooManyRequests, genericResponse{Message: "Too many requests"})
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		srv.writeJSON(w, http.StatusBadRequest, genericResponse{Message: "No files uploaded"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		srv.writeJSON(w, http.StatusBadRequest, genericResponse{Message: "No files uploaded"})
		return
	}
	if len(headers) > maxUploadFiles {
		srv.writeJSON(w, http.StatusBadRequest, genericResponse{Message: "Too many files"})
		return
	}

	files := make([]transfer.UploadFile, 0, len(headers))
	for _, hdr := range headers {
		if hdr.Size > maxUploadFileSize {
			srv.writeJSON(w, http.StatusBadRequest, genericResponse{Message: "File too large"})
			return
		}
		f, err := hdr.Open()
		if err != nil {
			srv.logger.Error().Err(err).Str("name", hdr.Filename).Msg("failed to open multipart file")
			srv.writeJSON(w, http.StatusInternalServerError, genericResponse{Message: "Upload failed"})
			return
		}
		defer func() { _ = f.Close() }()
		files = append(files, transfer.UploadFile{
			Name:        hdr.Filename,
			Size:        hdr.Size,
			ContentType: hdr.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	code, metas, err := srv.transfer.Upload(r.Context(), files)
	if err != nil {
		if errors.Is(err, transfer.ErrNoFiles) {
			srv.writeJSON(w, http.StatusBadRequest, genericResponse{Message: "No files uploaded"})
			return
		}
		srv.writeJSON(w, http.StatusInternalServerError, genericResponse{Message: "Upload failed"})
		return
	}

	srv.writeJSON(w, http.StatusOK, genericResponse{
		Success: true,
		Code:    code,
		Files:   metas,
	})
}

func (srv *Server) download(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	file, rc, err := srv.transfer.Download(r.Context(), code)
	if err != nil {
		if errors.Is(err, transfer.ErrNotFound) {
			srv.writeJSON(w, http.StatusNotFound, genericResponse{Message: "Files not found or expired"})
			return
		}
		srv.writeJSON(w, http.StatusInternalServerError, genericResponse{Message: "Failed to download file"})
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = io.Copy(w, rc); err != nil {
		srv.logger.Error().Err(err).Str("code", code).Msg("failed to stream file")
	}
}

type createRoomRequest struct {
	RoomName  string `json:"roomName"`
	CreatedBy string `json:"createdBy"`
}

type createRoomResponse struct {
	RoomID string              `json:"roomId"`
	Room   model.MusicRoomInfo `json:"room"`
}

func (srv *Server) createMusicRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	room := srv.music.Create(req.RoomName, req.CreatedBy)
	srv.writeJSON(w, http.StatusOK, createRoomResponse{RoomID: room.ID, Room: room})
}

func (srv *Server) listMusicRooms(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, http.StatusOK, srv.music.List())
}

func (srv *Server) getMusicRoom(w http.ResponseWriter, r *http.Request) {
	room, err := srv.music.Get(mux.Vars(r)["roomID"])
	if err != nil {
		srv.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}
	srv.writeJSON(w, http.StatusOK, room)
}

type setPlaylistRequest struct {
	Tracks []model.TrackRef `json:"tracks"`
}

func (srv *Server) setPlaylist(w http.ResponseWriter, r *http.Request) {
	var req setPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	room, err := srv.music.SetPlaylist(mux.Vars(r)["roomID"], req.Tracks)
	if err != nil {
		srv.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}
	srv.writeJSON(w, http.StatusOK, room)
}

// iceServers hands clients the STUN configuration; NAT traversal beyond
// that is delegated entirely to the browser.
func (srv *Server) iceServers(w http.ResponseWriter, _ *http.Request) {
	type iceServer struct {
		URLs []string `json:"urls"`
	}
	srv.writeJSON(w, http.StatusOK, map[string][]iceServer{
		"iceServers": {{URLs: srv.stunURLs}},
	})
}

func (srv *Server) health(w http.ResponseWriter, _ *http.Request) {
	srv.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (srv *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(code)
	if _, err = w.Write(b); err != nil {
		srv.logger.Error().Err(err).Msg("failed to write response")
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (srv *Server) Run(ctx context.Context, wg *sync.WaitGroup, errc chan<- error) {
	defer func() {
		srv.logger.Debug().Msg("server stopped")
		wg.Done()
	}()

	hErr := make(chan error)
	go func() {
		hErr <- srv.ListenAndServe()
	}()

	srv.logger.Info().Str("addr", srv.Addr).Msg("server started")

	select {
	case err := <-hErr:
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Join(ErrUnexpected, err)
		}
	case <-ctx.Done():
		shCtx, shCancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
		defer shCancel()
		if err := srv.Shutdown(shCtx); err != nil {
			srv.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}
}
