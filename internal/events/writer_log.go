package events

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// LogWriter writes events to the process log. It is the default sink.
type LogWriter struct{}

func (s *LogWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("log_writer").Debugw("event wrote", "type", e.Type(), "id", e.ID(), "topic", topic, "data", string(e.Data()))
	return nil
}

func (s *LogWriter) Close(_ context.Context) error {
	return nil
}
