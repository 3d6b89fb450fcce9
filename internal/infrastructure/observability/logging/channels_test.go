package logging

import (
	"context"
	"log/slog"
	"testing"
)

func newQuietLogger(t *testing.T) *ChanneledLogger {
	t.Helper()
	logger, err := NewChanneledLogger(&LoggerConfig{
		DefaultLevel:  slog.LevelInfo,
		ChannelLevels: make(map[Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("NewChanneledLogger: %v", err)
	}
	return logger
}

func TestSetChannelLevelRaisesVerbosity(t *testing.T) {
	logger := newQuietLogger(t)
	ctx := context.Background()

	if logger.Tracking().Enabled(ctx, slog.LevelDebug) {
		t.Fatal("tracking channel already at debug before SetChannelLevel")
	}

	if err := logger.SetChannelLevel(ChannelTracking, slog.LevelDebug); err != nil {
		t.Fatalf("SetChannelLevel: %v", err)
	}

	if !logger.Tracking().Enabled(ctx, slog.LevelDebug) {
		t.Fatal("tracking channel not at debug after SetChannelLevel")
	}
	if logger.Analytics().Enabled(ctx, slog.LevelDebug) {
		t.Error("analytics channel verbosity changed as a side effect")
	}
}

func TestSetChannelLevelRejectsUnknownChannel(t *testing.T) {
	logger := newQuietLogger(t)

	if err := logger.SetChannelLevel(Channel("telemetry"), slog.LevelDebug); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}
