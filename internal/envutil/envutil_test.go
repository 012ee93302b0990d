package envutil

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("QC_TEST_INT", "42")
	if got := Int("QC_TEST_INT", 1); got != 42 {
		t.Errorf("Int = %d, want 42", got)
	}
	t.Setenv("QC_TEST_INT", "nope")
	if got := Int("QC_TEST_INT", 1); got != 1 {
		t.Errorf("Int with garbage = %d, want default 1", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"1500ms", 1500 * time.Millisecond},
		{"-1s", 5 * time.Second},
		{"soon", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("QC_TEST_DUR", tt.raw)
		if got := Duration("QC_TEST_DUR", 5*time.Second); got != tt.want {
			t.Errorf("Duration(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestStringAndFloat(t *testing.T) {
	t.Setenv("QC_TEST_STR", "  python ")
	if got := String("QC_TEST_STR", "x"); got != "python" {
		t.Errorf("String = %q", got)
	}
	t.Setenv("QC_TEST_FLOAT", "0.25")
	if got := Float("QC_TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("Float = %v", got)
	}
}
