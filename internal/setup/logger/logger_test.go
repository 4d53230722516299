package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"not-a-level", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json")
			if l.GetLevel() != tt.want {
				t.Errorf("Expected level %s, got %s", tt.want, l.GetLevel())
			}
		})
	}
}
