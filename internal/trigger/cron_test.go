package trigger

import "testing"

func TestNewCronValidates(t *testing.T) {
	if _, err := NewCron("", ""); err == nil {
		t.Error("expected error for empty schedule")
	}
	if _, err := NewCron("* * * * *", "Not/AZone"); err == nil {
		t.Error("expected error for bad timezone")
	}
	if _, err := NewCron("*/5 * * * *", "Europe/Amsterdam"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
