// Package cloudapi delivers template messages through a Cloud-API-style
// HTTPS messaging endpoint.
package cloudapi

import (
	"time"

	"github.com/felixgeelhaar/notify-go/domain/template"
)

// Config configures the HTTPS channel.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string
	// APIVersion is the version path segment, e.g. v21.0.
	APIVersion string
	// PhoneNumberID identifies the sending number.
	PhoneNumberID string
	// AccessToken is sent as a bearer token.
	AccessToken string
	// AppSecret, when set, adds appsecret_proof to every call.
	AppSecret string
	// Language is the template language code.
	Language string
	// Templates maps kinds to remote template names. Unmapped kinds use
	// the kind itself.
	Templates map[template.Kind]string
	// Timeout is the HTTP request timeout.
	Timeout time.Duration
	// MaxConcurrent caps connections to the API host. 0 is unlimited.
	MaxConcurrent int
	// CircuitBreakerEnabled guards the endpoint with a circuit breaker.
	CircuitBreakerEnabled bool
	// CircuitBreakerThreshold is consecutive failures before opening.
	CircuitBreakerThreshold int
	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration
	// UserAgent is the User-Agent header value.
	UserAgent string
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:                 "https://graph.facebook.com",
		APIVersion:              "v21.0",
		Language:                "en",
		Timeout:                 10 * time.Second,
		CircuitBreakerEnabled:   true,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		UserAgent:               "notify-go/1.0",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = d.APIVersion
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CircuitBreakerThreshold <= 0 {
		c.CircuitBreakerThreshold = d.CircuitBreakerThreshold
	}
	if c.CircuitBreakerTimeout <= 0 {
		c.CircuitBreakerTimeout = d.CircuitBreakerTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// templateName returns the remote name for kind.
func (c Config) templateName(kind template.Kind) string {
	if name, ok := c.Templates[kind]; ok && name != "" {
		return name
	}
	return string(kind)
}
