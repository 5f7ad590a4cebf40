package ledger

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-userops/core"
)

// phase is the submitter's explicit protocol state. The machine moves
// Submitting -> Watching -> {Confirmed | Replacing -> Watching | Exhausted}.
type phase string

const (
	phaseSubmitting phase = "submitting"
	phaseWatching   phase = "watching"
	phaseReplacing  phase = "replacing"
	phaseConfirmed  phase = "confirmed"
	phaseExhausted  phase = "exhausted"
)

type Submitter struct {
	maxReplacements int
	decoder         *ErrorDecoder
	logger          core.Logger
}

type SubmitterOption func(*Submitter)

func WithMaxReplacements(max int) SubmitterOption {
	return func(s *Submitter) {
		if max >= 0 {
			s.maxReplacements = max
		}
	}
}

func WithDecoder(decoder *ErrorDecoder) SubmitterOption {
	return func(s *Submitter) {
		if decoder != nil {
			s.decoder = decoder
		}
	}
}

func WithLogger(logger core.Logger) SubmitterOption {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSubmitter(options ...SubmitterOption) *Submitter {
	submitter := &Submitter{
		maxReplacements: core.DefaultMaxReplacements,
		decoder:         NewErrorDecoder(DefaultErrorTable()),
		logger:          glog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(submitter)
	}
	return submitter
}

// Submit runs one logical operation through the replacement protocol.
// Execute-time failures are decoded and returned immediately; only a
// stalled watch triggers a replacement, and at most maxReplacements
// replacements are attempted before the request is declared exhausted.
// Ledger failures surface as outcomes; the error return is reserved for
// wiring mistakes.
func (s *Submitter) Submit(ctx context.Context, sender core.Sender) (core.OperationOutcome, error) {
	if s == nil {
		return core.OperationOutcome{}, submitterDependencyError("ledger: submitter is nil")
	}
	if sender == nil {
		return core.OperationOutcome{}, submitterDependencyError("ledger: sender is required")
	}

	var pending core.SubmittedOperation
	replacements := 0
	state := phaseSubmitting

	for {
		switch state {
		case phaseSubmitting:
			submitted, err := sender.Execute(ctx)
			if err != nil {
				failure := s.decode(err)
				s.logFailure(ctx, "execute failed", failure, replacements)
				return core.FailureOutcome(failure), nil
			}
			pending = submitted
			state = phaseWatching

		case phaseWatching:
			hash, err := sender.Watch(ctx, pending)
			if err == nil {
				return core.SuccessOutcome(hash), nil
			}
			s.logStall(ctx, err, replacements)
			if replacements >= s.maxReplacements {
				state = phaseExhausted
				continue
			}
			state = phaseReplacing

		case phaseReplacing:
			replaced, err := sender.Replace(ctx, pending)
			if err != nil {
				failure := s.decode(err)
				s.logFailure(ctx, "replace failed", failure, replacements)
				return core.FailureOutcome(failure), nil
			}
			pending = replaced
			replacements++
			state = phaseWatching

		case phaseExhausted:
			s.logExhausted(ctx, replacements)
			return core.ReplacementsExceededOutcome(s.maxReplacements), nil
		}
	}
}

func (s *Submitter) decode(err error) core.OperationFailure {
	if s.decoder == nil {
		return core.OperationFailure{Kind: core.FailureUnexpected, Raw: err.Error()}
	}
	return s.decoder.Decode(err)
}

func (s *Submitter) logStall(ctx context.Context, err error, replacements int) {
	if s.logger == nil {
		return
	}
	s.logger.WithContext(ctx).Info("submission stalled",
		"error", err.Error(),
		"replacements", replacements,
	)
}

func (s *Submitter) logFailure(ctx context.Context, message string, failure core.OperationFailure, replacements int) {
	if s.logger == nil {
		return
	}
	s.logger.WithContext(ctx).Error(message,
		"failure_kind", string(failure.Kind),
		"replacements", replacements,
	)
}

func (s *Submitter) logExhausted(ctx context.Context, replacements int) {
	if s.logger == nil {
		return
	}
	s.logger.WithContext(ctx).Error("replacement budget exhausted",
		"replacements", replacements,
	)
}

var _ core.OperationSubmitter = (*Submitter)(nil)
