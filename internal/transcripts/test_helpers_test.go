package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.SetLogger(zap.NewNop())
	goleak.VerifyTestMain(m)
}

// stubLLM answers completions from fn and records every request.
type stubLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	fn       func(req llm.Request) (CompletionResult, error)
}

func fixedLLM(summary string, items ...string) *stubLLM {
	return &stubLLM{fn: func(llm.Request) (CompletionResult, error) {
		return CompletionResult{Summary: summary, ActionItems: items}, nil
	}}
}

func failingLLM(err error) *stubLLM {
	return &stubLLM{fn: func(llm.Request) (CompletionResult, error) {
		return CompletionResult{}, err
	}}
}

func (s *stubLLM) Complete(ctx context.Context, req llm.Request, out any) error {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	res, err := s.fn(req)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// failingRepo fails every Save and GetByID with err.
type failingRepo struct {
	err error
}

func (r failingRepo) Save(context.Context, Analysis) error { return &RepositoryError{Op: "save", Err: r.err} }

func (r failingRepo) GetByID(context.Context, string) (Analysis, error) {
	return Analysis{}, &RepositoryError{Op: "get", Err: r.err}
}

var errDiskFull = errors.New("disk full")
