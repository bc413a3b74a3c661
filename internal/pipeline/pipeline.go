// Package pipeline runs one collect, synthesize, publish pass.
//
// Each stage blocks until its network or filesystem call returns. A failed
// collect or synthesize aborts the run before the next stage starts; a
// failed publish ends the run in StateUnpublished rather than StateDone.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hoanghai1803/insightpost/internal/models"
	"github.com/hoanghai1803/insightpost/internal/publisher"
)

// ErrMissingCredential is returned by New when no backend API key is set.
var ErrMissingCredential = errors.New("generation backend API key is not set")

// State is a step of a run.
type State string

const (
	StateCollecting   State = "collecting"
	StateSynthesizing State = "synthesizing"
	StatePublishing   State = "publishing"
	StateDone         State = "done"
	StateAborted      State = "aborted"
	StateUnpublished  State = "unpublished"
)

// Terminal reports whether a run ends in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted || s == StateUnpublished
}

// Collector fetches the entry a run works on.
type Collector interface {
	FetchLatest(ctx context.Context) (models.FeedEntry, error)
}

// Synthesizer turns an entry into raw insight text.
type Synthesizer interface {
	GenerateInsight(ctx context.Context, entry models.FeedEntry) (string, error)
}

// Publisher stores raw insight text as a post.
type Publisher interface {
	Publish(raw string) (*models.PublishedDocument, error)
}

// Config holds what the pipeline needs besides its stages.
type Config struct {
	// APIKey is the generation backend credential. Only its presence is
	// checked here.
	APIKey string

	// Now is used by Preview to date the rendered post. Defaults to time.Now.
	Now func() time.Time
}

// Result describes how a run ended and what it produced on the way.
type Result struct {
	State      State
	Entry      *models.FeedEntry
	RawInsight string
	Document   *models.PublishedDocument
	Err        error
}

// Pipeline wires the three stages together.
type Pipeline struct {
	cfg         Config
	collector   Collector
	synthesizer Synthesizer
	publisher   Publisher
}

// New validates cfg and returns a Pipeline. It fails with
// ErrMissingCredential before any stage can run.
func New(cfg Config, c Collector, s Synthesizer, p Publisher) (*Pipeline, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	if c == nil || s == nil || p == nil {
		return nil, errors.New("pipeline: collector, synthesizer and publisher are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{cfg: cfg, collector: c, synthesizer: s, publisher: p}, nil
}

// Run executes one pass. Stage failures are logged and reported in the
// Result; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context) Result {
	slog.Info("starting insight run")

	res := p.collectAndSynthesize(ctx)
	if res.State == StateAborted {
		return finish(res)
	}

	res.State = StatePublishing
	slog.Info("run state", "state", res.State)

	doc, err := p.publisher.Publish(res.RawInsight)
	if err != nil {
		res.State = StateUnpublished
		res.Err = fmt.Errorf("publishing: %w", err)
		return finish(res)
	}

	res.Document = doc
	res.State = StateDone
	return finish(res)
}

// Preview collects and synthesizes like Run, then renders the post without
// writing it.
func (p *Pipeline) Preview(ctx context.Context) Result {
	slog.Info("starting insight preview")

	res := p.collectAndSynthesize(ctx)
	if res.State == StateAborted {
		return finish(res)
	}

	insight, err := publisher.ParseInsight(res.RawInsight)
	if err != nil {
		res.State = StateUnpublished
		res.Err = fmt.Errorf("rendering: %w", err)
		return finish(res)
	}

	doc, err := publisher.Render(insight, p.cfg.Now())
	if err != nil {
		res.State = StateUnpublished
		res.Err = fmt.Errorf("rendering: %w", err)
		return finish(res)
	}

	res.Document = doc
	res.State = StateDone
	return finish(res)
}

// collectAndSynthesize runs the two network stages. It returns with State
// StateAborted on failure and StateSynthesizing once the insight exists.
func (p *Pipeline) collectAndSynthesize(ctx context.Context) Result {
	res := Result{State: StateCollecting}
	slog.Info("run state", "state", res.State)

	entry, err := p.collector.FetchLatest(ctx)
	if err != nil {
		res.State = StateAborted
		res.Err = fmt.Errorf("collecting: %w", err)
		return res
	}
	res.Entry = &entry
	slog.Info("collected feed entry",
		"title", preview(entry.Title, 50),
		"summary", preview(entry.Summary, 70),
	)

	res.State = StateSynthesizing
	slog.Info("run state", "state", res.State)

	raw, err := p.synthesizer.GenerateInsight(ctx, entry)
	if err != nil {
		res.State = StateAborted
		res.Err = fmt.Errorf("synthesizing: %w", err)
		return res
	}
	res.RawInsight = raw
	slog.Info("generated insight", "insight", raw)

	return res
}

// finish logs the terminal state of a run.
func finish(res Result) Result {
	switch res.State {
	case StateDone:
		attrs := []any{"state", res.State}
		if res.Document != nil {
			attrs = append(attrs, "file", res.Document.Filename)
			if res.Document.Path != "" {
				attrs = append(attrs, "path", res.Document.Path)
			}
		}
		slog.Info("insight run finished", attrs...)
	case StateUnpublished:
		slog.Error("insight run completed without publishing", "state", res.State, "error", res.Err)
	default:
		slog.Error("insight run aborted", "state", res.State, "error", res.Err)
	}
	return res
}

// preview shortens s to at most n runes, marking the cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
