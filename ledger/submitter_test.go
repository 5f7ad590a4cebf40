package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-userops/core"
)

type countingSender struct {
	executeErr error
	replaceErr error
	watchErrs  []error
	hash       string

	executeCalls int
	watchCalls   int
	replaceCalls int
}

func (s *countingSender) Execute(context.Context) (core.SubmittedOperation, error) {
	s.executeCalls++
	if s.executeErr != nil {
		return core.SubmittedOperation{}, s.executeErr
	}
	return core.SubmittedOperation{ID: "sub-0"}, nil
}

func (s *countingSender) Watch(_ context.Context, submitted core.SubmittedOperation) (string, error) {
	index := s.watchCalls
	s.watchCalls++
	if index < len(s.watchErrs) && s.watchErrs[index] != nil {
		return "", s.watchErrs[index]
	}
	return s.hash, nil
}

func (s *countingSender) Replace(_ context.Context, submitted core.SubmittedOperation) (core.SubmittedOperation, error) {
	s.replaceCalls++
	if s.replaceErr != nil {
		return core.SubmittedOperation{}, s.replaceErr
	}
	return core.SubmittedOperation{ID: fmt.Sprintf("sub-%d", s.replaceCalls)}, nil
}

func (s *countingSender) assertCalls(t *testing.T, execute, watch, replace int) {
	t.Helper()
	if s.executeCalls != execute {
		t.Fatalf("expected %d execute calls, got %d", execute, s.executeCalls)
	}
	if s.watchCalls != watch {
		t.Fatalf("expected %d watch calls, got %d", watch, s.watchCalls)
	}
	if s.replaceCalls != replace {
		t.Fatalf("expected %d replace calls, got %d", replace, s.replaceCalls)
	}
}

var errStalled = errors.New("timed out waiting for confirmation")

func TestSubmitConfirmsFirstWatch(t *testing.T) {
	sender := &countingSender{hash: "0xabc"}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeSuccess || outcome.Hash != "0xabc" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	sender.assertCalls(t, 1, 1, 0)
}

func TestSubmitRecoversAtReplacementBoundary(t *testing.T) {
	sender := &countingSender{
		hash:      "0xabc",
		watchErrs: []error{errStalled, errStalled, nil},
	}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeSuccess || outcome.Hash != "0xabc" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	sender.assertCalls(t, 1, 3, 2)
}

func TestSubmitExhaustsReplacementBudget(t *testing.T) {
	sender := &countingSender{
		watchErrs: []error{errStalled, errStalled, errStalled, errStalled},
	}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeReplacementsExceeded {
		t.Fatalf("expected replacements exceeded, got %+v", outcome)
	}
	if outcome.Attempts != core.DefaultMaxReplacements {
		t.Fatalf("expected %d attempts, got %d", core.DefaultMaxReplacements, outcome.Attempts)
	}
	// 1 initial submission + 2 replacements, each watched once; no 4th
	// replace is attempted.
	sender.assertCalls(t, 1, 3, 2)
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log(msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.log(msg) }

func (l *recordingLogger) WithContext(context.Context) core.Logger { return l }

func (l *recordingLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, recorded := range l.messages {
		if recorded == msg {
			total++
		}
	}
	return total
}

func TestSubmitLogsEveryStallOnExhaustedPath(t *testing.T) {
	logger := &recordingLogger{}
	sender := &countingSender{
		watchErrs: []error{errStalled, errStalled, errStalled},
	}
	outcome, err := NewSubmitter(WithLogger(logger)).Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeReplacementsExceeded {
		t.Fatalf("expected replacements exceeded, got %+v", outcome)
	}
	// Three watches failed, so three stalls belong in the trail, the
	// final one included even though no replacement follows it.
	if got := logger.count("submission stalled"); got != 3 {
		t.Fatalf("expected 3 stall log entries, got %d", got)
	}
	if got := logger.count("replacement budget exhausted"); got != 1 {
		t.Fatalf("expected 1 exhausted log entry, got %d", got)
	}
}

func TestSubmitExecuteFailureShortCircuits(t *testing.T) {
	sender := &countingSender{executeErr: errors.New("insufficient funds")}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeFailure {
		t.Fatalf("expected failure outcome, got %+v", outcome)
	}
	if outcome.Failure == nil || outcome.Failure.Kind != core.FailureUnexpected {
		t.Fatalf("expected unexpected failure, got %+v", outcome.Failure)
	}
	sender.assertCalls(t, 1, 0, 0)
}

func TestSubmitReplaceFailureShortCircuits(t *testing.T) {
	sender := &countingSender{
		watchErrs:  []error{errStalled},
		replaceErr: errors.New("nonce too low"),
	}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeFailure {
		t.Fatalf("expected failure outcome, got %+v", outcome)
	}
	sender.assertCalls(t, 1, 1, 1)
}

func TestSubmitExecuteFailureDecodesRevert(t *testing.T) {
	details := `{"code":3,"message":"execution reverted","data":{"revertData":"` + selectorHex("PeerIdAlreadyRegistered()") + `"}}`
	sender := &countingSender{
		executeErr: &TransportError{Code: -32000, Message: "execution reverted", Details: details},
	}
	outcome, err := NewSubmitter().Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Failure == nil || outcome.Failure.Kind != core.FailureRevertDecoded {
		t.Fatalf("expected decoded revert, got %+v", outcome.Failure)
	}
	if outcome.Failure.Name != "PeerIdAlreadyRegistered" {
		t.Fatalf("unexpected revert name: %s", outcome.Failure.Name)
	}
	sender.assertCalls(t, 1, 0, 0)
}

func TestSubmitZeroReplacementBudget(t *testing.T) {
	sender := &countingSender{watchErrs: []error{errStalled}}
	outcome, err := NewSubmitter(WithMaxReplacements(0)).Submit(context.Background(), sender)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != core.OutcomeReplacementsExceeded || outcome.Attempts != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	sender.assertCalls(t, 1, 1, 0)
}

func TestSubmitNilSender(t *testing.T) {
	if _, err := NewSubmitter().Submit(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil sender")
	}
}
