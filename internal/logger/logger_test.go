package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zapcore.Level
		wantOK bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.InfoLevel, true},
		{"WARN", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLevel(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestChildLoggers(t *testing.T) {
	log := New("error", false).Named("anchor").With(String("url", "https://example.com/"))
	log.Debug("dropped below level")
	log.Info("dropped below level",
		Int64("id", 1),
		Bool("ok", true),
		Strings("sites", []string{"a", "b"}),
		Error(errors.New("boom")))
	_ = log.Sync()

	Nop().Named("x").With(Int("n", 1)).Error("discarded")
}
