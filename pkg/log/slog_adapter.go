package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceUID != "" {
		attrs = append(attrs, slog.String("device_uid", event.DeviceUID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Line != nil:
		attrs = append(attrs,
			slog.Int("line_size", event.Line.Size),
			slog.String("line", event.Line.Text),
		)
	case event.Message != nil:
		attrs = append(attrs, slog.String("msg_type", event.Message.Type.String()))
		if event.Message.Command != "" {
			attrs = append(attrs, slog.String("command", event.Message.Command))
		}
		if event.Message.Stream != "" {
			attrs = append(attrs, slog.String("stream", event.Message.Stream))
		}
		if event.Message.OK != nil {
			attrs = append(attrs, slog.Bool("ok", *event.Message.OK))
		}
		if event.Message.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Message.Reason))
		}
		if event.Message.SampleTime != nil {
			attrs = append(attrs, slog.Float64("sample_time", *event.Message.SampleTime))
		}
		if event.Message.ValueCount != nil {
			attrs = append(attrs, slog.Int("value_count", *event.Message.ValueCount))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
