package transcripts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/metrics"
	"transcript-analyzer/internal/shared/telemetry"
)

const (
	modeSingle = "single"
	modeAsync  = "async"
	modeBatch  = "batch"
)

// Service orchestrates transcript analysis: prompt, completion, id, persist.
type Service struct {
	LLM     llm.Client
	Repo    Repo
	Metrics *metrics.Recorder

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service. rec may be nil.
func NewService(client llm.Client, repo Repo, rec *metrics.Recorder) *Service {
	return &Service{LLM: client, Repo: repo, Metrics: rec}
}

// Analyze runs the pipeline on the calling goroutine. LLM errors are returned
// unchanged; any other failure is wrapped in *AnalysisError. Once issued, the
// completion and save are not cancelled with ctx; ctx only carries values.
func (s *Service) Analyze(ctx context.Context, transcript string) (Analysis, error) {
	return s.run(context.WithoutCancel(ctx), transcript, modeSingle)
}

// AnalyzeAsync starts the pipeline in the background. The work is detached from
// ctx cancellation; ctx only carries values.
func (s *Service) AnalyzeAsync(ctx context.Context, transcript string) *Pending[Analysis] {
	detached := context.WithoutCancel(ctx)
	return startPending(func() (Analysis, error) {
		return s.run(detached, transcript, modeAsync)
	})
}

// AnalyzeBatch analyzes every transcript concurrently and returns results in
// input order. The first observed failure fails the whole batch; siblings are
// not cancelled and analyses they already saved stay saved. Like AnalyzeAsync,
// the tasks are detached from ctx cancellation.
func (s *Service) AnalyzeBatch(ctx context.Context, transcripts []string) ([]Analysis, error) {
	if len(transcripts) == 0 {
		return []Analysis{}, nil
	}

	detached := context.WithoutCancel(ctx)

	results := make([]Analysis, len(transcripts))
	var g errgroup.Group
	for i, transcript := range transcripts {
		g.Go(func() error {
			analysis, err := s.run(detached, transcript, modeBatch)
			if err != nil {
				return err
			}
			results[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.Warn("analysis.batch_failed", map[string]any{
			"size":  len(transcripts),
			"kind":  llm.KindName(err),
			"error": err,
		})
		return nil, err
	}
	return results, nil
}

// GetByID returns the stored analysis, or ok=false when none exists.
func (s *Service) GetByID(ctx context.Context, id string) (Analysis, bool, error) {
	analysis, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Analysis{}, false, nil
	}
	if err != nil {
		return Analysis{}, false, err
	}
	return analysis, true, nil
}

// GetByIDAsync is the background form of GetByID.
func (s *Service) GetByIDAsync(ctx context.Context, id string) *Pending[Lookup] {
	detached := context.WithoutCancel(ctx)
	return startPending(func() (Lookup, error) {
		analysis, ok, err := s.GetByID(detached, id)
		return Lookup{Analysis: analysis, Found: ok}, err
	})
}

// Get is like GetByID but reports absence as *NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (Analysis, error) {
	analysis, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	if !ok {
		return Analysis{}, &NotFoundError{ID: id}
	}
	return analysis, nil
}

func (s *Service) run(ctx context.Context, transcript, mode string) (Analysis, error) {
	start := time.Now()
	s.Metrics.AnalysisStarted(mode)

	analysis, err := s.pipeline(ctx, transcript)
	elapsed := time.Since(start)
	if err != nil {
		if !llm.IsLLMError(err) {
			err = newAnalysisError(err)
		}
		kind := llm.KindName(err)
		s.Metrics.AnalysisFailed(mode, kind, elapsed)
		telemetry.Error("analysis.failed", map[string]any{
			"mode":        mode,
			"kind":        kind,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err,
		})
		return Analysis{}, err
	}

	s.Metrics.AnalysisCompleted(mode, elapsed)
	telemetry.Info("analysis.completed", map[string]any{
		"id":           analysis.ID,
		"mode":         mode,
		"action_items": len(analysis.ActionItems),
		"duration_ms":  elapsed.Milliseconds(),
	})
	return analysis, nil
}

func (s *Service) pipeline(ctx context.Context, transcript string) (analysis Analysis, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	var result CompletionResult
	req := llm.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   BuildUserPrompt(transcript),
		Schema:       analysisSchema,
	}
	if err := s.LLM.Complete(ctx, req, &result); err != nil {
		return Analysis{}, err
	}
	if strings.TrimSpace(result.Summary) == "" {
		return Analysis{}, errors.New("completion returned an empty summary")
	}

	analysis = s.newAnalysis(result)
	if err := s.Repo.Save(ctx, analysis); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

func (s *Service) newAnalysis(result CompletionResult) Analysis {
	newID := s.newID
	if newID == nil {
		newID = uuid.NewString
	}
	now := s.now
	if now == nil {
		now = time.Now
	}
	return Analysis{
		ID:          newID(),
		Summary:     result.Summary,
		ActionItems: cloneItems(result.ActionItems),
		CreatedAt:   now().UTC(),
	}
}
