package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NazwanSM/nusavarta-auth/internal/fault"
)

const identityToolkitBase = "https://identitytoolkit.googleapis.com/v1"

// restClient talks to the Identity Toolkit REST API. The Admin SDK has no
// credential-verification surface, so password sign-in, reauthentication, and
// out-of-band reset emails go through the same endpoint the first-party SDKs
// use.
type restClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func newRESTClient(apiKey string, timeout time.Duration) *restClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &restClient{
		apiKey:  apiKey,
		baseURL: identityToolkitBase,
		http:    &http.Client{Timeout: timeout},
	}
}

type signInResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
	IDToken       string `json:"idToken"`
	EmailVerified bool   `json:"emailVerified"`
}

func (c *restClient) signInWithPassword(ctx context.Context, email, password string) (*signInResponse, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var out signInResponse
	if err := c.post(ctx, "accounts:signInWithPassword", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) signInWithIDP(ctx context.Context, idToken string) (*signInResponse, error) {
	body := map[string]any{
		"postBody":            fmt.Sprintf("id_token=%s&providerId=google.com", idToken),
		"requestUri":          "http://localhost",
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}
	var out signInResponse
	if err := c.post(ctx, "accounts:signInWithIdp", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) sendPasswordReset(ctx context.Context, email string) error {
	body := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	return c.post(ctx, "accounts:sendOobCode", body, &struct{}{})
}

func (c *restClient) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &fault.BackendError{
			Code:    "auth/network-request-failed",
			Message: fmt.Sprintf("%s: %v", endpoint, err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return &fault.BackendError{
				Code:    "auth/internal-error",
				Message: fmt.Sprintf("%s: http %d", endpoint, resp.StatusCode),
			}
		}
		return restError(endpoint, apiErr.Error.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// restError maps an Identity Toolkit error string onto the provider error
// codes the rest of the service keys on. Messages sometimes carry a detail
// suffix ("TOO_MANY_ATTEMPTS_TRY_LATER : ..."), so only the leading token is
// significant.
func restError(endpoint, message string) error {
	token := message
	if idx := strings.IndexAny(token, " :"); idx >= 0 {
		token = token[:idx]
	}

	code, ok := restErrorCodes[token]
	if !ok {
		code = "auth/internal-error"
	}
	return &fault.BackendError{
		Code:    code,
		Message: fmt.Sprintf("%s: %s", endpoint, message),
	}
}

var restErrorCodes = map[string]string{
	"EMAIL_NOT_FOUND":             "auth/user-not-found",
	"INVALID_PASSWORD":            "auth/wrong-password",
	"INVALID_LOGIN_CREDENTIALS":   "auth/invalid-credential",
	"USER_DISABLED":               "auth/user-disabled",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "auth/too-many-requests",
	"EMAIL_EXISTS":                "auth/email-already-in-use",
	"WEAK_PASSWORD":               "auth/weak-password",
	"INVALID_EMAIL":               "auth/invalid-email",
	"INVALID_IDP_RESPONSE":        "auth/invalid-credential",
	"OPERATION_NOT_ALLOWED":       "auth/operation-not-allowed",
}
