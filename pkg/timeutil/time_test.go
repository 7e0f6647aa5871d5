package timeutil

import (
	"testing"
	"time"
)

func TestNow_AlwaysUTC(t *testing.T) {
	now := Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() returned non-UTC timezone: %v", now.Location())
	}
}

func TestProcessorLocation(t *testing.T) {
	loc := ProcessorLocation()
	if loc.String() != ProcessorZone {
		t.Errorf("ProcessorLocation() = %v, want %v", loc, ProcessorZone)
	}
}

func TestParseFirst(t *testing.T) {
	layouts := []string{"20060102 15:04:05", "2006-01-02 15:04:05"}
	belgrade := ProcessorLocation()

	tests := []struct {
		name     string
		value    string
		loc      *time.Location
		expected string
		wantErr  bool
	}{
		{
			name:     "first layout UTC",
			value:    "20260301 11:59:30",
			loc:      time.UTC,
			expected: "2026-03-01 11:59:30 +0000 UTC",
		},
		{
			name:     "second layout UTC",
			value:    "2026-03-01 11:59:30",
			loc:      time.UTC,
			expected: "2026-03-01 11:59:30 +0000 UTC",
		},
		{
			name:     "winter time in Belgrade",
			value:    "20260115 13:00:00",
			loc:      belgrade,
			expected: "2026-01-15 12:00:00 +0000 UTC",
		},
		{
			name:     "summer time in Belgrade",
			value:    "20260715 13:00:00",
			loc:      belgrade,
			expected: "2026-07-15 11:00:00 +0000 UTC",
		},
		{
			name:    "empty",
			value:   "",
			loc:     time.UTC,
			wantErr: true,
		},
		{
			name:    "garbage",
			value:   "yesterday",
			loc:     time.UTC,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseFirst(layouts, tt.value, tt.loc)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFirst(%q) expected error, got %v", tt.value, result)
				}
				if !result.IsZero() {
					t.Errorf("ParseFirst(%q) expected zero time on error, got %v", tt.value, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFirst(%q) unexpected error: %v", tt.value, err)
			}
			if result.String() != tt.expected {
				t.Errorf("ParseFirst() = %v, want %v", result, tt.expected)
			}
			if result.Location() != time.UTC {
				t.Errorf("ParseFirst() returned non-UTC: %v", result.Location())
			}
		})
	}
}
