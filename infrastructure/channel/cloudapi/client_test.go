package cloudapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/template"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		APIVersion:    "v21.0",
		PhoneNumberID: "123456",
		AccessToken:   "token-abc",
		Language:      "en_AU",
		Timeout:       2 * time.Second,
	}
}

func supplierMessage() notification.Message {
	return notification.Message{
		To:       "61400000000",
		Template: template.KindSupplierStatementAdded,
		Params:   []string{"Acme", "2025-01", "$1234.50", "15/02/2025"},
	}
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotQuery string
		gotAuth  string
		gotBody  []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Templates = map[template.Kind]string{template.KindSupplierStatementAdded: "supplier_statement_v2"}
	c := New(cfg)

	if err := c.Send(context.Background(), supplierMessage()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/v21.0/123456/messages" {
		t.Errorf("path = %s", gotPath)
	}
	if gotQuery != "" {
		t.Errorf("query = %s, want none without app secret", gotQuery)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("Authorization = %s", gotAuth)
	}

	var req messageRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("body: %v", err)
	}
	if req.MessagingProduct != "whatsapp" || req.Type != "template" || req.To != "61400000000" {
		t.Errorf("envelope = %+v", req)
	}
	if req.Template.Name != "supplier_statement_v2" {
		t.Errorf("template name = %s", req.Template.Name)
	}
	if req.Template.Language.Code != "en_AU" {
		t.Errorf("language = %s", req.Template.Language.Code)
	}
	if len(req.Template.Components) != 1 || req.Template.Components[0].Type != "body" {
		t.Fatalf("components = %+v", req.Template.Components)
	}
	params := req.Template.Components[0].Parameters
	if len(params) != 4 || params[0].Text != "Acme" || params[3].Text != "15/02/2025" || params[2].Type != "text" {
		t.Errorf("parameters = %+v", params)
	}
}

func TestClient_SendAppSecretProof(t *testing.T) {
	t.Parallel()

	var proof string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proof = r.URL.Query().Get("appsecret_proof")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.AppSecret = "app-secret"
	if err := New(cfg).Send(context.Background(), supplierMessage()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !VerifyAppSecretProof("token-abc", "app-secret", proof) {
		t.Errorf("appsecret_proof = %q does not verify", proof)
	}
}

func TestClient_SendStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"ok", http.StatusOK, `{}`, nil},
		{"created", http.StatusCreated, `{}`, nil},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Invalid OAuth access token"}}`, notification.ErrChannelUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, notification.ErrChannelUnauthorized},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"Invalid parameter"}}`, notification.ErrChannelRejected},
		{"not found", http.StatusNotFound, `not json`, notification.ErrChannelRejected},
		{"server error", http.StatusInternalServerError, `{}`, notification.ErrChannelUnavailable},
		{"bad gateway", http.StatusBadGateway, `{}`, notification.ErrChannelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New(testConfig(server.URL)).Send(context.Background(), supplierMessage())
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Send() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Send() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_SendErrorMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Template name does not exist","code":132001}}`))
	}))
	defer server.Close()

	err := New(testConfig(server.URL)).Send(context.Background(), supplierMessage())
	if err == nil || !strings.Contains(err.Error(), "Template name does not exist") {
		t.Errorf("error = %v, want API message", err)
	}
}

func TestClient_SendArityMismatch(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := New(testConfig(server.URL))
	tests := []notification.Message{
		{To: "61400000000", Template: template.KindSupplierStatementAdded, Params: []string{"Acme"}},
		{To: "61400000000", Template: template.Kind("nope"), Params: nil},
	}
	for _, msg := range tests {
		if err := c.Send(context.Background(), msg); !errors.Is(err, notification.ErrArityMismatch) {
			t.Errorf("Send(%s) error = %v, want ErrArityMismatch", msg.Template, err)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
}

func TestClient_SendNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := New(testConfig(url)).Send(context.Background(), supplierMessage())
	if !errors.Is(err, notification.ErrChannelUnavailable) {
		t.Errorf("error = %v, want ErrChannelUnavailable", err)
	}
}

func TestClient_SendTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	err := New(cfg).Send(context.Background(), supplierMessage())
	if !errors.Is(err, notification.ErrChannelUnavailable) {
		t.Errorf("error = %v, want ErrChannelUnavailable", err)
	}
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CircuitBreakerEnabled = true
	cfg.CircuitBreakerThreshold = 2
	cfg.CircuitBreakerTimeout = time.Minute
	c := New(cfg)

	for i := 0; i < 2; i++ {
		if err := c.Send(context.Background(), supplierMessage()); !errors.Is(err, notification.ErrChannelUnavailable) {
			t.Fatalf("send %d error = %v", i, err)
		}
	}

	err := c.Send(context.Background(), supplierMessage())
	if !errors.Is(err, notification.ErrChannelUnavailable) {
		t.Errorf("open circuit error = %v, want ErrChannelUnavailable", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestClient_RejectionsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CircuitBreakerEnabled = true
	cfg.CircuitBreakerThreshold = 1
	c := New(cfg)

	for i := 0; i < 3; i++ {
		if err := c.Send(context.Background(), supplierMessage()); !errors.Is(err, notification.ErrChannelRejected) {
			t.Fatalf("send %d error = %v", i, err)
		}
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
}

func TestClient_BreakerStateDisabled(t *testing.T) {
	t.Parallel()

	if got := New(testConfig("http://localhost")).BreakerState(); got != "disabled" {
		t.Errorf("BreakerState() = %s, want disabled", got)
	}
}

func TestClient_CheckCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		phoneID string
		wantErr bool
	}{
		{"configured", "token", "123", false},
		{"no token", "", "123", true},
		{"blank token", "   ", "123", true},
		{"no phone number id", "token", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig("http://localhost")
			cfg.AccessToken = tt.token
			cfg.PhoneNumberID = tt.phoneID
			err := New(cfg).CheckCredential(context.Background())
			if tt.wantErr != (err != nil) {
				t.Fatalf("CheckCredential() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, notification.ErrMissingCredential) {
				t.Errorf("error = %v, want ErrMissingCredential", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New(Config{PhoneNumberID: "42"})
	if got := c.Endpoint(); got != "https://graph.facebook.com/v21.0/42/messages" {
		t.Errorf("Endpoint() = %s", got)
	}
	if c.config.Language != "en" {
		t.Errorf("Language = %s, want en", c.config.Language)
	}
	if c.client.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", c.client.Timeout)
	}
}

func TestNew_MaxConcurrent(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost")
	cfg.MaxConcurrent = 4
	c := New(cfg)

	tr, ok := c.client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T", c.client.Transport)
	}
	if tr.MaxConnsPerHost != 4 {
		t.Errorf("MaxConnsPerHost = %d, want 4", tr.MaxConnsPerHost)
	}
}
