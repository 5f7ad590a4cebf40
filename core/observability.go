package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

// NopMetricsRecorder discards every measurement. It is the default
// recorder so callers never have to nil-check before instrumenting.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// observeOperation emits one counter, one duration histogram, and one
// structured log line per gateway operation. Fields are whatever the
// operation accumulated before returning; org_id and outcome are
// promoted to metric tags when present.
func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	operation = metricName(operation)
	elapsed := time.Since(startedAt)

	status := "success"
	if err != nil {
		status = "failure"
	}
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"org_id", "outcome"} {
		if value, ok := fields[key].(string); ok && strings.TrimSpace(value) != "" {
			tags[key] = value
		}
	}
	if s.metricsRecorder != nil {
		s.metricsRecorder.IncCounter(ctx, "userops."+operation+".total", 1, cloneTags(tags))
		s.metricsRecorder.ObserveHistogram(ctx, "userops."+operation+".duration_ms", float64(elapsed.Milliseconds()), cloneTags(tags))
	}

	logFields := cloneFields(fields)
	logFields["operation"] = operation
	logFields["status"] = status
	logFields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		logFields["error"] = err.Error()
		s.logEvent(ctx, true, operation+" failed", logFields)
		return
	}
	s.logEvent(ctx, false, operation+" completed", logFields)
}

func (s *Service) logEvent(ctx context.Context, failed bool, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := sortedLogArgs(fields)
	if failed {
		logger.Error(message, args...)
		return
	}
	logger.Info(message, args...)
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

// sortedLogArgs renders a field map as deterministic key/value pairs so
// log lines for the same event always read the same way.
func sortedLogArgs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func metricName(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	if operation == "" {
		return "unknown"
	}
	return operation
}
