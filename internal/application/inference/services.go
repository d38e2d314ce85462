package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
)

// Service is the inference gateway: per-attempt timeout, bounded retry with
// exponential backoff on rate-limit and transient failures, schema validation
// of the model output. Auth and malformed responses fail fast, no retry.
type Service struct {
	Analyzer    domain.Analyzer
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration

	// Sleep is swappable in tests; nil means real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewService(analyzer domain.Analyzer) *Service {
	return &Service{
		Analyzer:    analyzer,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
	}
}

// Infer runs one model call lifecycle for a period and returns the validated
// result. There is no local fallback: after retries the classified error is
// surfaced and the orchestrator decides whether to skip the period.
func (s *Service) Infer(ctx context.Context, req domain.Request) (*domain.Result, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	backoff := s.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			// 2s, 4s, 8s, ...
			wait := backoff << (attempt - 2)
			if err := s.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		raw, err := s.analyzeOnce(ctx, req, timeout)
		if err == nil {
			res, perr := domain.ParseResult(raw)
			if perr != nil {
				return nil, perr
			}
			res.AnalyzedAt = time.Now()
			return res, nil
		}

		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		if ctx.Err() != nil {
			// caller cancelled; do not spend more attempts
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (s *Service) analyzeOnce(ctx context.Context, req domain.Request, timeout time.Duration) (string, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.Analyzer.Analyze(actx, req)
	if err != nil {
		if actx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return "", err
	}
	return raw, nil
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
