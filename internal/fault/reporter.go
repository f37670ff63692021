package fault

import (
	"context"

	"go.uber.org/zap"
)

// LogReporter is the diagnostics fallback used when no broker is configured:
// reportable faults land in the structured log instead of a topic.
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, details Details, original error) {
	fields := []zap.Field{
		zap.String("code", details.Code),
		zap.String("message", details.Message),
	}
	if original != nil {
		fields = append(fields, zap.Error(original))
	}
	r.logger.Error("reportable fault", fields...)
}

var _ Reporter = (*LogReporter)(nil)
