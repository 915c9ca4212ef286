package config

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaults_AreValid(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	if errs := NewValidator().Validate(&cfg); errs.HasErrors() {
		t.Fatalf("Defaults() invalid: %v", errs)
	}
	if cfg.Phone.DefaultRegion != "AU" {
		t.Errorf("DefaultRegion = %s, want AU", cfg.Phone.DefaultRegion)
	}
	if cfg.Channel.Timeout.Duration() != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Channel.Timeout.Duration())
	}
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var out struct {
		D Duration `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"1m30s"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.D.Duration() != 90*time.Second {
		t.Errorf("D = %v, want 1m30s", out.D.Duration())
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"d":"1m30s"}` {
		t.Errorf("Marshal() = %s", data)
	}

	if err := json.Unmarshal([]byte(`{"d":"soon"}`), &out); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	var out struct {
		D Duration `yaml:"d"`
	}
	if err := yaml.Unmarshal([]byte("d: 250ms\n"), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.D.Duration() != 250*time.Millisecond {
		t.Errorf("D = %v, want 250ms", out.D.Duration())
	}
}
