package api_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/notify-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/notify-go/interfaces/api"
)

const seed = `
users:
  - id: u1
    active: true
    primary_phone: "0400000001"
    flags:
      stageDrafting: true
  - id: u2
    active: true
    primary_phone: "0400000002"
    secondary_phone: "+61 400 000 003"
    flags:
      stageDrafting: true
  - id: u3
    active: false
    primary_phone: "0400000004"
    flags:
      stageDrafting: true
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildFromConfig_DryRun(t *testing.T) {
	t.Parallel()

	cfg := api.DefaultConfig()
	cfg.Storage.SeedFile = writeSeed(t)

	var out bytes.Buffer
	ctx := context.Background()
	engine, err := api.BuildFromConfig(ctx, &cfg, api.WithDryRun(&out))
	if err != nil {
		t.Fatalf("BuildFromConfig() error = %v", err)
	}
	defer func() {
		if err := engine.Close(ctx); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	result, err := engine.DispatchRecord(ctx, []byte(`{"kind":"stage-update","fields":{"project":"Smith Kitchen","stageName":"Drafting"}}`))
	if err != nil {
		t.Fatalf("DispatchRecord() error = %v", err)
	}

	if result.Template != api.TemplateStageCompleted {
		t.Errorf("Template = %q, want %q", result.Template, api.TemplateStageCompleted)
	}
	if result.Attempted != 3 || result.Sent != 3 || result.Failed != 0 {
		t.Errorf("result = %d/%d/%d, want 3/3/0", result.Attempted, result.Sent, result.Failed)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 3 {
		t.Errorf("printed %d lines, want 3:\n%s", lines, out.String())
	}
	if !strings.Contains(out.String(), `"61400000003"`) {
		t.Errorf("secondary number missing from output:\n%s", out.String())
	}
}

func TestBuildFromConfig_BuildError(t *testing.T) {
	t.Parallel()

	cfg := api.DefaultConfig()
	cfg.Storage.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := api.BuildFromConfig(context.Background(), &cfg)
	if !errors.Is(err, api.ErrBuildFailed) {
		t.Fatalf("error = %v, want ErrBuildFailed", err)
	}
}

func TestNewDispatcher_ManualWiring(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore(api.User{
		ID:           "u1",
		Active:       true,
		PrimaryPhone: "0400000001",
		Flags:        map[api.Flag]bool{"meeting": true},
	})

	var (
		mu   sync.Mutex
		sent []api.Message
	)
	channel := api.ChannelFunc(func(_ context.Context, msg api.Message) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, msg)
		return nil
	})

	dispatcher, err := api.NewDispatcherWithOptions(
		api.WithRecipients(api.NewRecipientResolver(store, api.NewNormalizer("AU"))),
		api.WithChannel(channel),
		api.WithMaxConcurrency(1),
	)
	if err != nil {
		t.Fatalf("NewDispatcherWithOptions() error = %v", err)
	}

	result, err := dispatcher.Dispatch(context.Background(), api.Request{
		Event: api.MeetingConfirmation{Title: "Site visit"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("Sent = %d, want 1", result.Sent)
	}
	if len(sent) != 1 || sent[0].To != "61400000001" {
		t.Errorf("sent = %+v", sent)
	}
	if got, want := len(sent[0].Params), api.TemplateMeetingConfirmation.Arity(); got != want {
		t.Errorf("params = %d, want %d", got, want)
	}
}

func TestNewDispatcher_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := api.NewDispatcher(api.DispatcherConfig{})
	if !errors.Is(err, api.ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	kind, err := api.ParseTemplate("supplier-statement-added")
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}

	rec, err := api.ParseRecord([]byte(`{"kind":"supplier-statement","fields":{"supplier":"Acme","period":"2025-01","amount":1234.5,"dueDate":"2025-02-15"}}`))
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}

	plan, err := api.Prepare(api.Request{Event: rec.Event(), Template: &kind})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := []string{"Acme", "2025-01", "$1234.50", "15/02/2025"}
	if strings.Join(plan.Params, "|") != strings.Join(want, "|") {
		t.Errorf("Params = %v, want %v", plan.Params, want)
	}
	if plan.Gate != "supplierStatements" {
		t.Errorf("Gate = %q, want supplierStatements", plan.Gate)
	}
}

func TestConfigSchemaJSON(t *testing.T) {
	t.Parallel()

	schema, err := api.ConfigSchemaJSON()
	if err != nil {
		t.Fatalf("ConfigSchemaJSON() error = %v", err)
	}
	if !strings.Contains(schema, `"channel"`) {
		t.Errorf("schema missing channel section")
	}
}
