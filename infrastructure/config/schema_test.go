package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/notify-go/domain/template"
)

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()

	if schema.Type != "object" {
		t.Errorf("Type = %s, want object", schema.Type)
	}
	if len(schema.Required) != 2 {
		t.Errorf("Required = %v, want [name version]", schema.Required)
	}
	for _, key := range []string{"name", "version", "phone", "channel", "storage", "dispatch", "logging", "telemetry"} {
		if schema.Properties[key] == nil {
			t.Errorf("schema missing property %s", key)
		}
	}
}

func TestGenerateSchema_TemplatesCoverEveryKind(t *testing.T) {
	templates := GenerateSchema().Properties["channel"].Properties["templates"]
	for _, k := range template.Kinds() {
		if templates.Properties[string(k)] == nil {
			t.Errorf("templates schema missing %s", k)
		}
	}
}

func TestGenerateSchema_StorageDrivers(t *testing.T) {
	driver := GenerateSchema().Properties["storage"].Properties["driver"]
	if len(driver.Enum) != 4 {
		t.Errorf("driver enum = %v, want 4 drivers", driver.Enum)
	}
}

func TestSchemaJSON(t *testing.T) {
	jsonStr, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		t.Fatalf("SchemaJSON() returned invalid JSON: %v", err)
	}

	if parsed["$schema"] == nil {
		t.Error("Schema missing $schema")
	}
	if parsed["title"] != "Notify Configuration" {
		t.Errorf("title = %v, want Notify Configuration", parsed["title"])
	}
	if !strings.Contains(jsonStr, "\n") {
		t.Error("SchemaJSON() should be indented (contain newlines)")
	}
}
