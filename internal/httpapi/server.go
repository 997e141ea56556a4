// SPDX-License-Identifier: EPL-2.0

// Package httpapi exposes the audio library over HTTP and JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ik5/audedit/edit"
	"github.com/ik5/audedit/internal/library"
	"github.com/ik5/audedit/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	// UserHeader names the caller. Requests without it act as AnonymousUser.
	UserHeader    = "X-User"
	AnonymousUser = "anonymous"

	// DefaultMaxUpload bounds an upload request body.
	DefaultMaxUpload = 100 << 20

	multipartMemory = 32 << 20
)

type Server struct {
	lib       *library.Library
	log       *logrus.Entry
	maxUpload int64
}

// New returns a server over lib. maxUpload <= 0 uses DefaultMaxUpload.
func New(lib *library.Library, log *logrus.Entry, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}

	return &Server{lib: lib, log: logging.OrDiscard(log), maxUpload: maxUpload}
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /api/audio/{$}", s.list)
	mux.HandleFunc("POST /api/audio/{$}", s.upload)
	mux.HandleFunc("GET /api/audio/{id}/{$}", s.get)
	mux.HandleFunc("DELETE /api/audio/{id}/{$}", s.delete)
	mux.HandleFunc("POST /api/audio/{id}/edit/{$}", s.edit)
	mux.HandleFunc("GET /api/audio/{id}/edits/{$}", s.edits)
	mux.HandleFunc("GET /api/audio/{id}/download/{$}", s.download)

	return s.logRequests(mux)
}

func user(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}

	return AnonymousUser
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("writing response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps library and engine errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound), errors.Is(err, library.ErrFileMissing):
		return http.StatusNotFound
	case errors.Is(err, library.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, library.ErrUnsupportedFormat), errors.Is(err, edit.ErrInvalidParameters):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": ...}. Server-side failures are logged and
// reported with msg only.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(msg)
		s.writeJSON(w, status, errorBody{Error: msg})
		return
	}

	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	assets, err := s.lib.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "failed to list audio files")
		return
	}

	s.writeJSON(w, http.StatusOK, assets)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
			return
		}
		s.badRequest(w, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, "no file provided")
		return
	}
	defer file.Close()

	a, err := s.lib.Upload(r.Context(), library.Upload{
		Title:    r.FormValue("title"),
		User:     user(r),
		Filename: header.Filename,
		Body:     file,
	})
	if err != nil {
		s.fail(w, r, err, "failed to process audio metadata, the file might be corrupted or unsupported")
		return
	}

	s.writeJSON(w, http.StatusCreated, a)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	a, err := s.lib.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "failed to read audio file")
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Delete(r.Context(), r.PathValue("id"), user(r)); err != nil {
		s.fail(w, r, err, "failed to delete audio file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type editRequest struct {
	Kind       string          `json:"edit_type"`
	Parameters json.RawMessage `json:"parameters"`
}

// readEdit accepts a JSON body or form fields. parameters may be an object
// or a string holding one.
func readEdit(r *http.Request) (string, edit.Params, error) {
	var req editRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", nil, errors.New("invalid JSON body")
		}
	} else {
		req.Kind = r.FormValue("edit_type")
		if p := r.FormValue("parameters"); p != "" {
			req.Parameters = json.RawMessage(p)
		}
	}

	if req.Kind == "" {
		return "", nil, errors.New("edit type is required")
	}

	params, err := edit.ParseParams(req.Parameters)
	if err != nil {
		return "", nil, errors.New("invalid parameters format")
	}

	return req.Kind, params, nil
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	kind, params, err := readEdit(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	a, err := s.lib.Edit(r.Context(), r.PathValue("id"), user(r), kind, params)
	if err != nil {
		s.fail(w, r, err, "failed to process audio")
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) edits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.lib.Edits(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "failed to read edit history")
		return
	}

	s.writeJSON(w, http.StatusOK, edits)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	dl, err := s.lib.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "failed to open audio file")
		return
	}
	defer dl.File.Close()

	var modTime time.Time
	if info, err := dl.File.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name}))
	http.ServeContent(w, r, dl.Name, modTime, dl.File)
}
