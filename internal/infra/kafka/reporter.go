package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/config"
)

const (
	schemaVersion      = "1.0"
	faultReportedEvent = "fault.reported"
)

// FaultReporter forwards reportable faults to the diagnostics topic.
type FaultReporter struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

func NewFaultReporter(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *FaultReporter {
	return &FaultReporter{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type faultPayload struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	UserMessage string `json:"user_message"`
	Original    string `json:"original,omitempty"`
}

// Report publishes the normalized fault together with the original error
// text. Publish failures are logged, never propagated; diagnostics must not
// take a user flow down with it.
func (r *FaultReporter) Report(ctx context.Context, details fault.Details, original error) {
	payload := faultPayload{
		Code:        details.Code,
		Message:     details.Message,
		UserMessage: details.UserMessage,
	}
	if original != nil {
		payload.Original = original.Error()
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: faultReportedEvent,
		Timestamp: time.Now().UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     r.appCfg.Name,
			"environment": r.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		r.logger.Error("marshal fault envelope", zap.Error(err))
		return
	}

	message := &sarama.ProducerMessage{
		Topic: r.producer.TopicName(faultReportedEvent),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case r.producer.Input() <- message:
	case <-ctx.Done():
		r.logger.Warn("fault report dropped", zap.Error(ctx.Err()),
			zap.String("code", details.Code))
	}
}

var _ fault.Reporter = (*FaultReporter)(nil)
