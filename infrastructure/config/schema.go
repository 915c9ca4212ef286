package config

import (
	"encoding/json"
	"fmt"

	domainconfig "github.com/felixgeelhaar/notify-go/domain/config"
	"github.com/felixgeelhaar/notify-go/domain/template"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	MinLength            *int                   `json:"minLength,omitempty"`
	MaxLength            *int                   `json:"maxLength,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Ref                  string                 `json:"$ref,omitempty"`
	Definitions          map[string]*JSONSchema `json:"$defs,omitempty"`
	OneOf                []*JSONSchema          `json:"oneOf,omitempty"`
	AnyOf                []*JSONSchema          `json:"anyOf,omitempty"`
	AllOf                []*JSONSchema          `json:"allOf,omitempty"`
}

// GenerateSchema generates a JSON Schema for the notify-go Config.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/notify-go/notify-config.schema.json",
		Title:       "Notify Configuration",
		Description: "Configuration schema for the notify-go dispatch engine",
		Type:        "object",
		Required:    []string{"name", "version"},
		Properties: map[string]*JSONSchema{
			"name": {
				Type:        "string",
				Description: "A human-readable name for this configuration",
			},
			"version": {
				Type:        "string",
				Description: "The configuration schema version",
				Default:     "1.0",
			},
			"phone": {
				Type:        "object",
				Description: "Phone number normalization",
				Properties: map[string]*JSONSchema{
					"default_region": {
						Type:        "string",
						Description: "ISO 3166-1 alpha-2 region local numbers are parsed in",
						Pattern:     "^[A-Za-z]{2}$",
						Default:     "AU",
					},
				},
			},
			"channel":   generateChannelSchema(),
			"storage":   generateStorageSchema(),
			"dispatch":  generateDispatchSchema(),
			"logging":   generateLoggingSchema(),
			"telemetry": generateTelemetrySchema(),
		},
	}
}

func generateChannelSchema() *JSONSchema {
	templates := make(map[string]*JSONSchema)
	for _, k := range template.Kinds() {
		templates[string(k)] = &JSONSchema{
			Type:        "string",
			Description: fmt.Sprintf("Remote template name for %s (%d parameters)", k, k.Arity()),
			MinLength:   intPtr(1),
		}
	}

	return &JSONSchema{
		Type:        "object",
		Description: "Outbound message channel",
		Required:    []string{"provider"},
		Properties: map[string]*JSONSchema{
			"provider": {
				Type:        "string",
				Description: "Channel implementation",
				Enum:        []string{domainconfig.ProviderCloudAPI, domainconfig.ProviderConsole},
				Default:     domainconfig.ProviderConsole,
			},
			"base_url": {
				Type:        "string",
				Format:      "uri",
				Description: "API root URL",
				Default:     "https://graph.facebook.com",
			},
			"api_version": {
				Type:        "string",
				Description: "API version path segment",
				Default:     "v21.0",
			},
			"phone_number_id": {
				Type:        "string",
				Description: "Sending phone number identifier",
			},
			"access_token": {
				Type:        "string",
				Description: "Bearer token, usually ${ENV_VAR}",
			},
			"app_secret": {
				Type:        "string",
				Description: "App secret enabling appsecret_proof",
			},
			"language": {
				Type:        "string",
				Description: "Template language code",
				Default:     "en",
			},
			"timeout": {
				Type:    "string",
				Format:  "duration",
				Default: "10s",
			},
			"max_concurrent": {
				Type:        "integer",
				Description: "Maximum open connections to the channel host (0 = unlimited)",
				Minimum:     floatPtr(0),
			},
			"circuit_breaker": {
				Type:        "object",
				Description: "Circuit breaker around channel calls",
				Properties: map[string]*JSONSchema{
					"enabled": {
						Type:    "boolean",
						Default: true,
					},
					"threshold": {
						Type:    "integer",
						Minimum: floatPtr(0),
						Default: 5,
					},
					"timeout": {
						Type:    "string",
						Format:  "duration",
						Default: "30s",
					},
				},
			},
			"templates": {
				Type:        "object",
				Description: "Maps template kinds to remote template names",
				Properties:  templates,
			},
		},
	}
}

func generateStorageSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Preference store",
		Required:    []string{"driver"},
		Properties: map[string]*JSONSchema{
			"driver": {
				Type: "string",
				Enum: []string{
					domainconfig.DriverMemory,
					domainconfig.DriverSQLite,
					domainconfig.DriverPostgres,
					domainconfig.DriverMongoDB,
				},
				Default: domainconfig.DriverMemory,
			},
			"dsn": {
				Type:        "string",
				Description: "Connection string or database file path",
			},
			"database": {
				Type:        "string",
				Description: "MongoDB database name",
			},
			"schema": {
				Type:        "string",
				Description: "PostgreSQL schema",
				Default:     "public",
			},
			"seed_file": {
				Type:        "string",
				Description: "YAML or JSON user file loaded into the memory store",
			},
			"cache": {
				Type:        "object",
				Description: "Redis read-through cache",
				Properties: map[string]*JSONSchema{
					"enabled":    {Type: "boolean"},
					"address":    {Type: "string", Description: "host:port"},
					"password":   {Type: "string"},
					"db":         {Type: "integer", Minimum: floatPtr(0)},
					"ttl":        {Type: "string", Format: "duration", Default: "1m0s"},
					"key_prefix": {Type: "string", Default: "notify:"},
				},
			},
		},
	}
}

func generateDispatchSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Dispatch engine",
		Properties: map[string]*JSONSchema{
			"max_concurrency": {
				Type:        "integer",
				Description: "Maximum in-flight sends per dispatch (0 = unbounded)",
				Minimum:     floatPtr(0),
			},
		},
	}
}

func generateLoggingSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Structured logging",
		Properties: map[string]*JSONSchema{
			"level": {
				Type:    "string",
				Enum:    []string{"trace", "debug", "info", "warn", "error"},
				Default: "info",
			},
			"format": {
				Type:    "string",
				Enum:    []string{"json", "console"},
				Default: "console",
			},
		},
	}
}

func generateTelemetrySchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Metrics and tracing",
		Properties: map[string]*JSONSchema{
			"enabled": {Type: "boolean"},
			"exporter": {
				Type: "string",
				Enum: []string{
					domainconfig.ExporterStdout,
					domainconfig.ExporterOTLP,
					domainconfig.ExporterNoop,
				},
				Default: domainconfig.ExporterNoop,
			},
			"endpoint":     {Type: "string", Description: "OTLP collector endpoint"},
			"insecure":     {Type: "boolean"},
			"service_name": {Type: "string", Default: "notify"},
			"environment":  {Type: "string"},
			"sample_rate": {
				Type:    "number",
				Minimum: floatPtr(0),
				Maximum: floatPtr(1),
				Default: 1.0,
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

// SchemaJSON returns the JSON Schema as a JSON string.
func SchemaJSON() (string, error) {
	schema := GenerateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
