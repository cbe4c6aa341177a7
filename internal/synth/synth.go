// Package synth turns the slides of one section into a narrative paragraph
// by calling a language model.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/deckreport/internal/slides"
)

// Synthesizer produces the narrative text of one section.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (string, error)
}

// Request carries everything a section synthesis needs.
type Request struct {
	Members    []*slides.Record
	SectionKey string
	Context    string
	Exemplar   string // optional style example, passed through verbatim
}

// Completion is a single model call.
type Completion struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client sends one completion to a language model and returns its text.
type Client interface {
	Complete(ctx context.Context, c Completion) (string, error)
	Model() string
}

// Error wraps any failure of the language-model call for a section.
type Error struct {
	SectionKey string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("synthesize %q: %v", e.SectionKey, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsSynthesisError reports whether err came from a synthesis call.
func IsSynthesisError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Service is the Synthesizer backed by a Client. It makes exactly one
// request per call and never retries.
type Service struct {
	client    Client
	system    string
	maxTokens int
	stats     *LLMStats
	log       *slog.Logger
}

// NewService wires a client. stats may be nil.
func NewService(client Client, system string, maxTokens int, stats *LLMStats, log *slog.Logger) *Service {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		client:    client,
		system:    system,
		maxTokens: maxTokens,
		stats:     stats,
		log:       log,
	}
}

// Synthesize builds the section prompt, calls the model once and returns
// the trimmed answer.
func (s *Service) Synthesize(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(req.Members, req.Context, req.Exemplar)
	log := s.log.With("section", req.SectionKey, "model", s.client.Model())
	log.Debug("synthesizing section", "members", len(req.Members), "prompt_tokens_est", EstimateTokens(prompt))

	start := time.Now()
	text, err := s.client.Complete(ctx, Completion{
		System:    s.system,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	elapsed := time.Since(start)
	if s.stats != nil {
		s.stats.Record(elapsed.Milliseconds(), err != nil)
	}
	if err != nil {
		log.Error("synthesis failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return "", &Error{SectionKey: req.SectionKey, Err: err}
	}

	log.Info("section synthesized", "duration_ms", elapsed.Milliseconds())
	return strings.TrimSpace(text), nil
}

// Stats returns the latency tracker, possibly nil.
func (s *Service) Stats() *LLMStats { return s.stats }

// Model returns the model name of the underlying client.
func (s *Service) Model() string { return s.client.Model() }
