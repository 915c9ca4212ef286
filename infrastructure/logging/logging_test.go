package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/domain/template"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestProductionConfig(t *testing.T) {
	t.Parallel()

	config := ProductionConfig()

	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{" WARN ", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO}, // Default
		{"", bolt.INFO},        // Empty defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"dispatch id", DispatchID("d-1"), `"dispatch_id":"d-1"`},
		{"template", Template(template.KindInstallerAssigned), `"template":"installer-assigned"`},
		{"gate", Gate(preference.FlagMeeting), `"gate":"meeting"`},
		{"user id", UserID("u-7"), `"user_id":"u-7"`},
		{"address is masked", Address("61400000123"), `"address":"*******0123"`},
		{"attempted", Attempted(3), `"attempted":3`},
		{"sent", Sent(2), `"sent":2`},
		{"failed", Failed(1), `"failed":1`},
		{"duration", Duration(100 * time.Millisecond), `"duration_ms":100`},
		{"component", Component("dispatcher"), `"component":"dispatcher"`},
		{"operation", Operation("dispatch"), `"operation":"dispatch"`},
		{"str", Str("custom_key", "custom_value"), `"custom_key":"custom_value"`},
		{"int", Int("count", 4), `"count":4`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")

			if !bytes.Contains(buf.Bytes(), []byte(tt.want)) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	t.Run("with error", func(t *testing.T) {
		logger, buf := testLogger()
		ErrorField(errors.New("boom"))(logger.Error()).Msg("test")

		if !bytes.Contains(buf.Bytes(), []byte("boom")) {
			t.Errorf("expected error in output: %s", buf.String())
		}
	})

	t.Run("nil error adds nothing", func(t *testing.T) {
		logger, buf := testLogger()
		ErrorField(nil)(logger.Info()).Msg("test")

		if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
			t.Errorf("unexpected error field in output: %s", buf.String())
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Format: "json", Output: buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Errorf("info line should be filtered: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("warn line missing: %s", buf.String())
	}
}

func TestGet(t *testing.T) {
	logger := Get()
	if logger == nil {
		t.Fatal("Get() returned nil")
	}
	SetLevel("error")
}

func TestLogEvent(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	t.Run("Add chains fields", func(t *testing.T) {
		buf.Reset()
		NewEvent(logger.Info()).Add(DispatchID("d-1")).Add(Sent(2)).Msg("test")

		if !bytes.Contains(buf.Bytes(), []byte(`"dispatch_id":"d-1"`)) {
			t.Errorf("expected dispatch_id field in output: %s", buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"sent":2`)) {
			t.Errorf("expected sent field in output: %s", buf.String())
		}
	})

	t.Run("Send without message", func(t *testing.T) {
		buf.Reset()
		NewEvent(logger.Info()).Add(UserID("u-2")).Send()

		if !bytes.Contains(buf.Bytes(), []byte(`"user_id":"u-2"`)) {
			t.Errorf("expected user_id field in output: %s", buf.String())
		}
	})
}
