package timeutil

import (
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	ref := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  time.Time
	}{
		{
			name:  "epoch millis int64",
			input: ref.UnixMilli(),
			want:  ref,
		},
		{
			name:  "epoch millis float64",
			input: float64(ref.UnixMilli()),
			want:  ref,
		},
		{
			name:  "rfc3339 string",
			input: "2025-06-01T12:30:00Z",
			want:  ref,
		},
		{
			name:  "rfc3339 with offset",
			input: "2025-06-01T14:30:00+02:00",
			want:  ref,
		},
		{
			name:  "epoch millis string",
			input: "1748781000000",
			want:  time.UnixMilli(1748781000000).UTC(),
		},
		{
			name:  "time.Time passthrough",
			input: ref,
			want:  ref,
		},
		{
			name:  "garbage string",
			input: "not-a-timestamp",
			want:  time.Time{},
		},
		{
			name:  "empty string",
			input: "",
			want:  time.Time{},
		},
		{
			name:  "unsupported type",
			input: []byte("123"),
			want:  time.Time{},
		},
		{
			name:  "nil",
			input: nil,
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInstant(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseInstant(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestElapsedSecondsAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{
			name:  "five seconds ago",
			start: now.Add(-5 * time.Second),
			want:  5,
		},
		{
			name:  "same instant",
			start: now,
			want:  0,
		},
		{
			name:  "future start clamps to zero",
			start: now.Add(30 * time.Second),
			want:  0,
		},
		{
			name:  "zero start",
			start: time.Time{},
			want:  0,
		},
		{
			name:  "sub-second truncates",
			start: now.Add(-1500 * time.Millisecond),
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedSecondsAt(tt.start, now); got != tt.want {
				t.Errorf("ElapsedSecondsAt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatMMSS(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3661, "61:01"},
		{-4, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatMMSS(tt.seconds); got != tt.want {
			t.Errorf("FormatMMSS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatHHMMSS(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{-1, "00:00:00"},
	}

	for _, tt := range tests {
		if got := FormatHHMMSS(tt.seconds); got != tt.want {
			t.Errorf("FormatHHMMSS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
