// Package pipeline owns deck sessions and runs report generation for them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/deckreport/internal/assemble"
	"github.com/dgallion1/deckreport/internal/config"
	"github.com/dgallion1/deckreport/internal/deck"
	"github.com/dgallion1/deckreport/internal/section"
	"github.com/dgallion1/deckreport/internal/slides"
	"github.com/dgallion1/deckreport/internal/synth"
)

// ErrNotExtracted is returned when a session has no slides yet.
var ErrNotExtracted = errors.New("session has no extracted slides")

// extractFunc turns a deck (and optional page PDF) into slide records.
type extractFunc func(ctx context.Context, opts deck.Options, deckPath, pagesPath, imageDir string) ([]slides.Record, error)

// Service manages sessions and drives extraction and generation.
type Service struct {
	sessions  *SessionStore
	synth     synth.Synthesizer
	assembler *assemble.Assembler
	renderer  *assemble.Renderer
	deckOpts  deck.Options
	buildOpts section.Options
	log       *slog.Logger
	cfg       config.Config

	extract extractFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService builds the pipeline from configuration. The default crop box
// is parsed here so a bad CROP_BOX fails at startup.
func NewService(cfg config.Config, s synth.Synthesizer, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	crop, err := deck.ParseCropBox(cfg.CropBox)
	if err != nil {
		return nil, fmt.Errorf("parse crop box: %w", err)
	}
	if cfg.OutputName == "" {
		cfg.OutputName = config.DefaultOutputName
	}
	return &Service{
		sessions:  NewSessionStore(cfg.SessionTTL, log),
		synth:     s,
		assembler: assemble.NewAssembler(assemble.FileChecker{}, log),
		renderer:  assemble.NewRenderer(assemble.RenderOptions{ImageWidthInches: cfg.ImageWidthInches}, log),
		deckOpts: deck.Options{
			DPI:               cfg.RenderDPI,
			Crop:              crop,
			Workers:           cfg.RenderWorkers,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
		buildOpts: section.Options{
			PreserveBodies: cfg.PreserveSlideBodies,
			Duplicates:     section.DuplicatePolicy(cfg.DuplicateSections),
		},
		log:     log,
		cfg:     cfg,
		extract: extractDeck,
	}, nil
}

func extractDeck(ctx context.Context, opts deck.Options, deckPath, pagesPath, imageDir string) ([]slides.Record, error) {
	return deck.NewExtractor(opts, nil).Extract(ctx, deckPath, pagesPath, imageDir)
}

// Start launches the session cleanup loop.
func (s *Service) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := s.sessions.Cleanup(); n > 0 {
					s.log.Info("sessions cleaned up", "expired", n, "live", s.sessions.Len())
				}
			}
		}
	}()
}

// Stop ends the cleanup loop.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Upload is a named file stream handed to CreateSession.
type Upload struct {
	Filename string
	Body     io.Reader
}

// CreateOptions carry per-session overrides.
type CreateOptions struct {
	// Crop replaces the configured crop box when non-empty.
	Crop string
}

// CreateSession stores the uploaded deck (and optional page PDF) in a new
// work directory and extracts its slides. A failed extraction removes the
// session.
func (s *Service) CreateSession(ctx context.Context, deckFile Upload, pages *Upload, opts CreateOptions) (*Session, error) {
	name := filepath.Base(deckFile.Filename)
	if !deck.SupportedDeckExtensions[strings.ToLower(filepath.Ext(name))] {
		return nil, fmt.Errorf("unsupported deck format: %s", filepath.Ext(name))
	}
	if pages != nil && !strings.EqualFold(filepath.Ext(pages.Filename), ".pdf") {
		return nil, fmt.Errorf("page images must come from a .pdf, got %s", filepath.Ext(pages.Filename))
	}

	sess, err := newSession(s.cfg.WorkDir, name, s.cfg.OutputName)
	if err != nil {
		return nil, err
	}

	deckPath := filepath.Join(sess.Dir, "deck"+strings.ToLower(filepath.Ext(name)))
	if err := saveUpload(deckPath, deckFile.Body); err != nil {
		os.RemoveAll(sess.Dir)
		return nil, err
	}
	pagesPath := ""
	if pages != nil {
		pagesPath = filepath.Join(sess.Dir, "pages.pdf")
		if err := saveUpload(pagesPath, pages.Body); err != nil {
			os.RemoveAll(sess.Dir)
			return nil, err
		}
	}

	if err := s.load(ctx, sess, deckPath, pagesPath, opts); err != nil {
		os.RemoveAll(sess.Dir)
		return nil, err
	}
	s.sessions.Put(sess)
	return sess, nil
}

// OpenSession extracts a deck straight from local paths. The files are
// read in place; images and the report go to the session's work dir.
func (s *Service) OpenSession(ctx context.Context, deckPath, pagesPath string, opts CreateOptions) (*Session, error) {
	sess, err := newSession(s.cfg.WorkDir, filepath.Base(deckPath), s.cfg.OutputName)
	if err != nil {
		return nil, err
	}
	if err := s.load(ctx, sess, deckPath, pagesPath, opts); err != nil {
		os.RemoveAll(sess.Dir)
		return nil, err
	}
	s.sessions.Put(sess)
	return sess, nil
}

func (s *Service) load(ctx context.Context, sess *Session, deckPath, pagesPath string, opts CreateOptions) error {
	log := s.log.With("session_id", sess.ID, "deck", sess.DeckName)

	deckOpts := s.deckOpts
	if strings.TrimSpace(opts.Crop) != "" {
		crop, err := deck.ParseCropBox(opts.Crop)
		if err != nil {
			return fmt.Errorf("parse crop box: %w", err)
		}
		deckOpts.Crop = crop
	}

	hash, err := hashFile(deckPath)
	if err != nil {
		return err
	}

	start := time.Now()
	records, err := s.extract(ctx, deckOpts, deckPath, pagesPath, sess.ImageDir())
	if err != nil {
		log.Error("extraction failed", "error", err)
		return fmt.Errorf("extract deck: %w", err)
	}

	sess.setStore(slides.NewStore(records), hash)
	sess.SetStatus(StatusExtracted, "extracted")
	log.Info("session created", "slides", len(records), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Session returns a session by ID, or nil.
func (s *Service) Session(id string) *Session {
	return s.sessions.Get(id)
}

// DeleteSession drops a session and its files.
func (s *Service) DeleteSession(id string) bool {
	return s.sessions.Delete(id)
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

func saveUpload(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
