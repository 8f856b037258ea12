package config

import (
	"testing"
	"time"
)

func TestUISection_DefaultValues(t *testing.T) {
	ui := NewUISection()

	delay, persistent, animation := ui.GetToastSettings()
	if delay != 5*time.Second {
		t.Errorf("Expected default delay of 5s, got %v", delay)
	}
	if len(persistent) != 1 || persistent[0] != "error" {
		t.Errorf("Expected [error] as persistent categories, got %v", persistent)
	}
	if animation != 300*time.Millisecond {
		t.Errorf("Expected 300ms animation, got %v", animation)
	}
}

func TestUISection_IsPersistent(t *testing.T) {
	ui := NewUISection()

	tests := []struct {
		category string
		expected bool
	}{
		{"error", true},
		{"success", false},
		{"warning", false},
		{"info", false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := ui.IsPersistent(tt.category); got != tt.expected {
				t.Errorf("IsPersistent(%q) = %v, want %v", tt.category, got, tt.expected)
			}
		})
	}
}

func TestUISection_SetData(t *testing.T) {
	t.Run("accepts JSON shaped values", func(t *testing.T) {
		ui := NewUISection()
		err := ui.SetData(map[string]any{
			"toast_delay":           "2s",
			"dismiss_animation":     float64(100 * time.Millisecond),
			"persistent_categories": []any{"error", "warning"},
			"unknown":               true,
		})
		if err != nil {
			t.Fatalf("SetData failed: %v", err)
		}

		delay, persistent, animation := ui.GetToastSettings()
		if delay != 2*time.Second {
			t.Errorf("Expected 2s, got %v", delay)
		}
		if animation != 100*time.Millisecond {
			t.Errorf("Expected 100ms, got %v", animation)
		}
		if !ui.IsPersistent("warning") {
			t.Error("Expected warning to be persistent")
		}
		if len(persistent) != 2 {
			t.Errorf("Expected 2 persistent categories, got %v", persistent)
		}
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		ui := NewUISection()
		if err := ui.SetData(map[string]any{"toast_delay": true}); err == nil {
			t.Error("Expected error for bool delay")
		}
		if err := ui.SetData(map[string]any{"persistent_categories": []any{1}}); err == nil {
			t.Error("Expected error for numeric category")
		}
	})

	t.Run("round trips through Data", func(t *testing.T) {
		ui := NewUISection()
		ui.SetToastDelay(7 * time.Second)

		other := NewUISection()
		if err := other.SetData(ui.Data()); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
		if d, _, _ := other.GetToastSettings(); d != 7*time.Second {
			t.Errorf("Expected 7s after round trip, got %v", d)
		}
	})
}

func TestUISection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		wantErr bool
	}{
		{name: "minimum", delay: 100 * time.Millisecond},
		{name: "default", delay: 5 * time.Second},
		{name: "maximum", delay: 60 * time.Second},
		{name: "too short", delay: 50 * time.Millisecond, wantErr: true},
		{name: "too long", delay: 61 * time.Second, wantErr: true},
		{name: "zero", delay: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := NewUISection()
			ui.SetToastDelay(tt.delay)

			err := ui.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Expected validation error for delay %v", tt.delay)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error for delay %v: %v", tt.delay, err)
			}
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		ui := NewUISection()
		ui.PersistentCategories = []string{"fatal"}
		if err := ui.Validate(); err == nil {
			t.Error("Expected error for unknown category")
		}
	})
}

func TestUISection_Reset(t *testing.T) {
	ui := NewUISection()
	ui.SetToastDelay(time.Second)
	ui.PersistentCategories = nil

	ui.Reset()

	if d, p, _ := ui.GetToastSettings(); d != 5*time.Second || len(p) != 1 {
		t.Errorf("Reset did not restore defaults: %v %v", d, p)
	}
}

func TestUISection_ThreadSafety(t *testing.T) {
	ui := NewUISection()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			ui.SetToastDelay(time.Duration(i+1) * time.Second)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			ui.GetToastSettings()
			ui.IsPersistent("error")
			ui.Data()
		}
		done <- true
	}()

	<-done
	<-done
}
