package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", ptr(zapcore.DebugLevel)},
		{"info", ptr(zapcore.InfoLevel)},
		{"warn", ptr(zapcore.WarnLevel)},
		{"error", ptr(zapcore.ErrorLevel)},
		{"WARN", ptr(zapcore.WarnLevel)},
		{"warning", ptr(zapcore.WarnLevel)},
		{" info ", ptr(zapcore.InfoLevel)},
		{"fatal", ptr(zapcore.FatalLevel)},
		{"verbose", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, *got, *tt.want)
		}
	}
}

func TestNopWith(t *testing.T) {
	l := Nop().Named("test").With(String("component", "test"), Bool("ok", true), Int64("n", 1))
	l.Info("discarded")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() on nop logger: %v", err)
	}
}

func ptr(l zapcore.Level) *zapcore.Level { return &l }
