package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/deckreport/internal/assemble"
	"github.com/dgallion1/deckreport/internal/exemplar"
	"github.com/dgallion1/deckreport/internal/pipeline"
	"github.com/dgallion1/deckreport/internal/section"
	"github.com/dgallion1/deckreport/internal/synth"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// generateTimeout is the write deadline for a generation: one model call per
// row plus a minute for assembly and the download itself.
func generateTimeout(rows int, llmTimeout time.Duration) time.Duration {
	return time.Duration(rows+1)*llmTimeout + time.Minute
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	rows, err := formRows(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The server-wide write timeout is too short for long reports.
	timeout := generateTimeout(len(rows), s.cfg.LLMTimeout)
	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		s.log.Debug("write deadline not extended", "error", err)
	}

	req := pipeline.GenerateRequest{
		Rows:    rows,
		Context: r.FormValue("context"),
	}

	tf, th, ok, err := formFile(r, "template")
	if err != nil {
		jsonError(w, "invalid template file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if ok {
		data, err := io.ReadAll(tf)
		tf.Close()
		if err != nil {
			jsonError(w, "failed to read template", http.StatusBadRequest)
			return
		}
		if req.Template, err = assemble.ParseTemplate(sanitizeFilename(th.Filename), data); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ef, eh, ok, err := formFile(r, "exemplar")
	if err != nil {
		jsonError(w, "invalid exemplar file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if ok {
		name := sanitizeFilename(eh.Filename)
		if !exemplar.IsSupported(name) {
			ef.Close()
			jsonError(w, "unsupported exemplar type: "+filepath.Ext(name), http.StatusBadRequest)
			return
		}
		req.Exemplar, err = exemplar.Parse(ef, name)
		ef.Close()
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, err := s.service.Generate(r.Context(), sess, req)
	if err != nil {
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("X-Report-Sections", strconv.Itoa(res.Sections))
	w.Header().Set("X-Report-Figures", strconv.Itoa(res.Figures))
	s.serveReport(w, r, sess)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if !sess.HasReport() {
		jsonError(w, "no report generated yet", http.StatusNotFound)
		return
	}
	s.serveReport(w, r, sess)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, sess *pipeline.Session) {
	f, err := os.Open(sess.ReportPath())
	if err != nil {
		s.log.Error("open report failed", "session_id", sess.ID, "error", err)
		jsonError(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		jsonError(w, "report unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.OutputName))
	http.ServeContent(w, r, s.cfg.OutputName, info.ModTime(), f)
}

// formRows reads the section table from the "rows" JSON field or an
// uploaded "rows_file" in any supported table format.
func formRows(r *http.Request) ([]section.Row, error) {
	if raw := strings.TrimSpace(r.FormValue("rows")); raw != "" {
		return section.ParseRowsJSON([]byte(raw))
	}
	f, h, ok, err := formFile(r, "rows_file")
	if err != nil {
		return nil, fmt.Errorf("invalid rows file: %w", err)
	}
	if !ok {
		return nil, errors.New("rows or rows_file is required")
	}
	defer f.Close()
	return section.ReadRows(f, sanitizeFilename(h.Filename))
}

// statusForError maps generation failures onto HTTP status codes.
func statusForError(err error) int {
	var (
		idxErr  *section.IndexError
		tmplErr *assemble.TemplateError
	)
	switch {
	case errors.As(err, &idxErr), errors.Is(err, section.ErrDuplicateSection):
		return http.StatusUnprocessableEntity
	case synth.IsSynthesisError(err):
		return http.StatusBadGateway
	case errors.As(err, &tmplErr):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNotExtracted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
