package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/deckreport/internal/deck"
	"github.com/dgallion1/deckreport/internal/pipeline"
	"github.com/dgallion1/deckreport/internal/slides"
)

// slideView is the public shape of a slide; server paths stay private.
type slideView struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	HasImage bool   `json:"has_image"`
	ImageURL string `json:"image_url,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	// Deck plus page PDF, with 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	deckFile, deckHeader, err := r.FormFile("deck")
	if err != nil {
		jsonError(w, "deck is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer deckFile.Close()

	deckName := sanitizeFilename(deckHeader.Filename)
	if !deck.SupportedDeckExtensions[strings.ToLower(filepath.Ext(deckName))] {
		jsonError(w, fmt.Sprintf("unsupported deck type: %s", filepath.Ext(deckName)), http.StatusBadRequest)
		return
	}
	if deckHeader.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("deck exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	var pages *pipeline.Upload
	pf, ph, ok, err := formFile(r, "pages")
	if err != nil {
		jsonError(w, "invalid pages file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if ok {
		defer pf.Close()
		if ph.Size > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("pages exceed max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		pages = &pipeline.Upload{Filename: sanitizeFilename(ph.Filename), Body: pf}
	}

	crop := r.FormValue("crop")
	if _, err := deck.ParseCropBox(crop); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := s.service.CreateSession(r.Context(),
		pipeline.Upload{Filename: deckName, Body: deckFile}, pages, pipeline.CreateOptions{Crop: crop})
	if err != nil {
		s.log.Error("create session failed", "deck", deckName, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session":    sess.Snapshot(),
		"slides_url": fmt.Sprintf("/api/sessions/%s/slides", sess.ID),
		"report_url": fmt.Sprintf("/api/sessions/%s/report", sess.ID),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.service.DeleteSession(id) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "session_id": id})
}

func (s *Server) handleListSlides(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	store := sess.Store()
	if store == nil {
		jsonError(w, pipeline.ErrNotExtracted.Error(), http.StatusConflict)
		return
	}
	records := store.Snapshot()
	views := make([]slideView, len(records))
	for i, rec := range records {
		views[i] = view(sess.ID, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"count":      len(views),
		"slides":     views,
	})
}

func (s *Server) handleGetSlide(w http.ResponseWriter, r *http.Request) {
	sess, rec := s.slide(w, r)
	if rec == nil {
		return
	}
	writeJSON(w, http.StatusOK, view(sess.ID, *rec))
}

func (s *Server) handleSlideImage(w http.ResponseWriter, r *http.Request) {
	_, rec := s.slide(w, r)
	if rec == nil {
		return
	}
	if !fileExists(rec.ImagePath) {
		jsonError(w, "slide has no image", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, rec.ImagePath)
}

// session resolves {sessionID} or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *pipeline.Session {
	sess := s.service.Session(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
	}
	return sess
}

// slide resolves {sessionID} and {index} or writes an error.
func (s *Server) slide(w http.ResponseWriter, r *http.Request) (*pipeline.Session, *slides.Record) {
	sess := s.session(w, r)
	if sess == nil {
		return nil, nil
	}
	store := sess.Store()
	if store == nil {
		jsonError(w, pipeline.ErrNotExtracted.Error(), http.StatusConflict)
		return nil, nil
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "slide index must be an integer", http.StatusBadRequest)
		return nil, nil
	}
	rec, err := store.Get(idx)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, nil
	}
	cp := *rec
	cp.Body = store.Body(idx)
	return sess, &cp
}

func view(sessionID string, rec slides.Record) slideView {
	v := slideView{Index: rec.Index, Title: rec.Title, Body: rec.Body}
	if fileExists(rec.ImagePath) {
		v.HasImage = true
		v.ImageURL = fmt.Sprintf("/api/sessions/%s/slides/%d/image", sessionID, rec.Index)
	}
	return v
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

// formFile opens an optional multipart file; ok is false when absent.
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool, error) {
	f, h, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return f, h, true, nil
}
