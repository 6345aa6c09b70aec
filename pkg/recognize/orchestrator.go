package recognize

import (
	"context"
	"log"
	"time"

	"be04/pkg/scale"
)

// Strategy is one stage of the recognition chain. A nil error means the
// returned estimate is terminal, even when it carries no value (the
// needs-review case); a non-nil error requests fallthrough to the next stage.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, imagePath string) (scale.Estimate, error)
}

// Attempt records one strategy invocation, for logging and diagnostics only.
type Attempt struct {
	Method    string `json:"method"`
	Succeeded bool   `json:"succeeded"`
	ErrReason string `json:"err_reason,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// ScanResult is the terminal outcome of one image scan.
type ScanResult struct {
	Estimate scale.Estimate `json:"estimate"`
	Attempts []Attempt      `json:"attempts"`
}

// Orchestrator runs an ordered list of strategies, falling through on
// failure. It never returns an error to the caller: the last stage in the
// default chain (the simulated reading) always succeeds, and even a fully
// custom chain ends in a null-value estimate rather than a failure.
type Orchestrator struct {
	strategies []Strategy
}

// NewChain builds an orchestrator over an explicit ordered strategy list.
func NewChain(strategies ...Strategy) *Orchestrator {
	return &Orchestrator{strategies: strategies}
}

// NewOrchestrator builds the default chain: remote OCR service, local
// Tesseract (secondary slot, off unless configured), heuristic image
// analysis, simulated reading.
func NewOrchestrator() *Orchestrator {
	return NewChain(
		NewTextStrategy(NewOCRSpaceClient(), scale.SourceRemote, remoteTimeout(), true),
		NewTextStrategy(NewTesseractRecognizer(), scale.SourceSecondary, 0, false),
		NewAnalysisStrategy(NewHeuristicAnalyzer(nil)),
		NewSimulated(nil),
	)
}

// ScanImage runs the chain for one image. Each call builds its own attempt
// log and estimate; nothing is shared between concurrent scans.
func (o *Orchestrator) ScanImage(ctx context.Context, imagePath string) ScanResult {
	res := ScanResult{}
	for _, s := range o.strategies {
		start := time.Now()
		est, err := s.Attempt(ctx, imagePath)
		elapsed := time.Since(start).Milliseconds()
		at := Attempt{Method: s.Name(), Succeeded: err == nil, ElapsedMs: elapsed}
		if err != nil {
			at.ErrReason = err.Error()
			res.Attempts = append(res.Attempts, at)
			log.Printf("recognize: %s failed after %dms: %v", s.Name(), elapsed, err)
			continue
		}
		res.Attempts = append(res.Attempts, at)
		res.Estimate = est
		if est.Found() {
			log.Printf("recognize: %s resolved %.3f kg confidence=%d", s.Name(), *est.ValueKg, est.Confidence)
		} else {
			log.Printf("recognize: %s terminal without value (manual review)", s.Name())
		}
		return res
	}
	// Exhausted chain: signal manual entry.
	res.Estimate = scale.Estimate{Source: scale.SourceManual}
	return res
}

// textStrategy adapts a Recognizer into a Strategy by resolving its text
// output. keepRawOnMiss reproduces the remote stage's early-exit behavior:
// when text was retrieved but no weight pattern matched, the raw text is
// handed back for manual review instead of falling through to guesses.
type textStrategy struct {
	rec           Recognizer
	source        string
	timeout       time.Duration
	keepRawOnMiss bool
}

// NewTextStrategy wraps a Recognizer as one chain stage. timeout > 0 bounds
// the recognizer call; the orchestrator side owns the deadline and cancels
// the in-flight request when it expires.
func NewTextStrategy(rec Recognizer, source string, timeout time.Duration, keepRawOnMiss bool) Strategy {
	return &textStrategy{rec: rec, source: source, timeout: timeout, keepRawOnMiss: keepRawOnMiss}
}

func (t *textStrategy) Name() string { return t.source }

func (t *textStrategy) Attempt(ctx context.Context, imagePath string) (scale.Estimate, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	text, err := t.rec.Recognize(ctx, imagePath)
	if err != nil {
		return scale.Estimate{}, err
	}
	est := scale.ResolveFromText(text)
	est.Source = t.source
	if est.Found() {
		return est, nil
	}
	if t.keepRawOnMiss && text != "" {
		est.Method = scale.MethodNeedsReview
		return est, nil
	}
	return scale.Estimate{}, errNoCandidate
}

func remoteTimeout() time.Duration {
	return envDuration("OCR_TIMEOUT_SECONDS", 15*time.Second)
}
