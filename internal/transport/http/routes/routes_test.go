package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/config"
	localrepo "github.com/NazwanSM/nusavarta-auth/internal/repository/local"
	"github.com/NazwanSM/nusavarta-auth/internal/usecase"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	identity := localrepo.NewIdentityProvider(logger)
	t.Cleanup(identity.Close)

	profiles := localrepo.NewProfileRepository()
	creds := localrepo.NewCredentialStore()
	reporter := fault.NewLogReporter(logger)

	auth := usecase.NewAuthService(identity, profiles, creds, reporter, usecase.AuthPolicy{}, logger)
	profileSvc := usecase.NewProfileService(identity, profiles, reporter, logger)
	session := usecase.NewSessionManager(auth, profiles, identity, logger)
	t.Cleanup(session.Close)

	engine, err := Register(Dependencies{
		Config: &config.AppConfig{},
		Logger: logger,
		Services: ServiceSet{
			Session:  session,
			Profiles: profileSvc,
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRoutesHealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t)

	if rec := perform(engine, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := perform(engine, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /readyz status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := perform(engine, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRoutesRegisterLoginSession(t *testing.T) {
	engine := newTestEngine(t)

	rec := perform(engine, http.MethodPost, "/api/v1/auth/register", `{
		"email": "sari@example.com",
		"password": "S3cure!Pass",
		"confirmPassword": "S3cure!Pass",
		"firstName": "Sari",
		"lastName": "Dewi"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /auth/register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var registered struct {
		Success bool `json:"success"`
		User    *struct {
			UID         string `json:"uid"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if !registered.Success || registered.User == nil {
		t.Fatalf("register response = %s, want success with user", rec.Body.String())
	}
	if registered.User.DisplayName != "Sari Dewi" {
		t.Errorf("display name = %q, want %q", registered.User.DisplayName, "Sari Dewi")
	}

	// The session watcher applies sign-in events asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = perform(engine, http.MethodGet, "/api/v1/session", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /session status = %d", rec.Code)
		}
		var snapshot struct {
			State     string `json:"state"`
			IsLoading bool   `json:"isLoading"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
			t.Fatalf("decode session response: %v", err)
		}
		if snapshot.State == "authenticated" && !snapshot.IsLoading {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never became authenticated, last = %s", rec.Body.String())
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = perform(engine, http.MethodPost, "/api/v1/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /auth/logout status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRoutesLoginValidationFailure(t *testing.T) {
	engine := newTestEngine(t)

	rec := perform(engine, http.MethodPost, "/api/v1/auth/login", `{"email": "", "password": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /auth/login status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode validation response: %v", err)
	}
	if len(resp.Errors) == 0 || resp.Errors[0] != "Email is required" {
		t.Errorf("errors = %v, want leading %q", resp.Errors, "Email is required")
	}
}

func TestRoutesPasswordStrength(t *testing.T) {
	engine := newTestEngine(t)

	rec := perform(engine, http.MethodPost, "/api/v1/validation/password-strength", `{"password": "tr4vel!Plan#2026xq"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /validation/password-strength status = %d", rec.Code)
	}
	var resp struct {
		Score int    `json:"score"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode strength response: %v", err)
	}
	if resp.Score != 4 || resp.Label != "Strong" {
		t.Errorf("strength = (%d, %q), want (4, %q)", resp.Score, resp.Label, "Strong")
	}
}

func TestRoutesEmailAvailability(t *testing.T) {
	engine := newTestEngine(t)

	rec := perform(engine, http.MethodGet, "/api/v1/profile/email-availability?email=new%40example.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /profile/email-availability status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if rec := perform(engine, http.MethodGet, "/api/v1/profile/email-availability", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email query status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
