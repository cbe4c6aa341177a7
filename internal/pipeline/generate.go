package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/deckreport/internal/assemble"
	"github.com/dgallion1/deckreport/internal/exemplar"
	"github.com/dgallion1/deckreport/internal/section"
	"github.com/dgallion1/deckreport/internal/synth"
)

// GenerateRequest describes one report generation.
type GenerateRequest struct {
	Rows    []section.Row
	Context string

	// Template is used as the base document. TemplatePath is loaded when
	// Template is nil.
	Template     *assemble.Template
	TemplatePath string

	// Exemplar is optional style text for every synthesis.
	Exemplar string
}

// Result summarizes a successful generation.
type Result struct {
	Path        string        `json:"path"`
	Sections    int           `json:"sections"`
	SectionKeys []string      `json:"section_keys"`
	Figures     int           `json:"figures"`
	Bytes       int           `json:"bytes"`
	DurationMs  int64         `json:"duration_ms"`
	Duration    time.Duration `json:"-"`
}

// Generate builds, assembles and persists a report for sess. Calls on the
// same session run one at a time and each reads the store's current
// bodies. The template is loaded before any section work, and the report
// file is only replaced once the whole document encoded successfully.
func (s *Service) Generate(ctx context.Context, sess *Session, req GenerateRequest) (*Result, error) {
	sess.gen.Lock()
	defer sess.gen.Unlock()

	log := s.log.With("session_id", sess.ID, "rows", len(req.Rows))
	store := sess.Store()
	if store == nil {
		return nil, ErrNotExtracted
	}

	tmpl := req.Template
	if tmpl == nil && req.TemplatePath != "" {
		var err error
		if tmpl, err = assemble.LoadTemplate(req.TemplatePath); err != nil {
			log.Error("template rejected", "error", err)
			sess.Fail("template", err)
			return nil, err
		}
	}

	prev := sess.Status()
	sess.SetStatus(StatusGenerating, "building")
	start := time.Now()

	builder := section.NewBuilder(s.synth, s.buildOpts, log)
	if req.Exemplar != "" {
		style := exemplar.Trim(req.Exemplar, s.cfg.ExemplarMaxTokens)
		if len(style) < len(req.Exemplar) {
			log.Info("exemplar trimmed", "from_tokens", synth.EstimateTokens(req.Exemplar), "to_tokens", synth.EstimateTokens(style))
		}
		builder = builder.WithExemplar(style)
	}
	rep, err := builder.Build(ctx, req.Rows, store, req.Context)
	if err != nil {
		log.Error("build failed", "error", err)
		sess.Fail("building", err)
		return nil, err
	}

	sess.SetStatus(StatusGenerating, "assembling")
	doc := s.assembler.Assemble(rep)

	var buf bytes.Buffer
	if err := s.renderer.Write(&buf, doc, tmpl); err != nil {
		log.Error("render failed", "error", err)
		sess.Fail("rendering", err)
		return nil, err
	}

	path := sess.ReportPath()
	if err := WriteFileAtomic(path, buf.Bytes()); err != nil {
		log.Error("persist failed", "error", err)
		sess.Fail("persisting", err)
		return nil, err
	}
	sess.reportWritten()

	elapsed := time.Since(start)
	log.Info("report generated",
		"sections", len(rep.Sections),
		"figures", doc.Figures,
		"bytes", buf.Len(),
		"previous_status", prev,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &Result{
		Path:        path,
		Sections:    len(rep.Sections),
		SectionKeys: rep.Keys(),
		Figures:     doc.Figures,
		Bytes:       buf.Len(),
		DurationMs:  elapsed.Milliseconds(),
		Duration:    elapsed,
	}, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
