// Package authapi is the HTTP client for the clinic authentication service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"

	// maxErrorBody caps how much of a failed response is read for the detail.
	maxErrorBody = 64 << 10

	// DefaultTokenPath locates the bearer token in a success response.
	DefaultTokenPath = "token || access_token"
	// DefaultUserPath locates the user object in a success response.
	DefaultUserPath = "user"
)

var _ ports.AuthBackend = (*Client)(nil)

// Config captures the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	// TokenPath and UserPath are JMESPath expressions evaluated against the
	// success body. Empty values use DefaultTokenPath and DefaultUserPath.
	TokenPath string
	UserPath  string
}

// Client talks JSON to the authentication service.
type Client struct {
	baseURL   *url.URL
	client    *http.Client
	tokenPath string
	userPath  string
}

// NewClient builds a client. A nil Config.Client gets a default http.Client
// with a public-suffix aware cookie jar.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("auth backend url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse auth backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("auth backend url must be http or https, got %q", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	tokenPath, err := compilePath(cfg.TokenPath, DefaultTokenPath)
	if err != nil {
		return nil, fmt.Errorf("token path: %w", err)
	}
	userPath, err := compilePath(cfg.UserPath, DefaultUserPath)
	if err != nil {
		return nil, fmt.Errorf("user path: %w", err)
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	return &Client{baseURL: base, client: hc, tokenPath: tokenPath, userPath: userPath}, nil
}

// compilePath validates expr, substituting def when it is blank.
func compilePath(expr, def string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = def
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return "", fmt.Errorf("invalid JMESPath %q: %w", expr, err)
	}
	return expr, nil
}

// StatusError is a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("auth backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("auth backend returned %d: %s", e.StatusCode, e.Detail)
}

// UserMessage returns the service-provided detail, suitable for showing on a form.
func (e *StatusError) UserMessage() string { return e.Detail }

type loginBody struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     *domainauth.Role `json:"role,omitempty"`
}

// Login posts credentials to the login endpoint.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (ports.AuthResult, error) {
	return c.post(ctx, loginPath, loginBody{Email: req.Email, Password: req.Password, Role: req.Role})
}

// Register posts the account fields. Extra fields are flattened into the
// body; the fixed fields always win on key collisions.
func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (ports.AuthResult, error) {
	body := make(map[string]any, len(req.Extra)+4)
	maps.Copy(body, req.Extra)
	body["email"] = req.Email
	body["password"] = req.Password
	body["name"] = req.Name
	body["role"] = req.Role
	return c.post(ctx, registerPath, body)
}

func (c *Client) post(ctx context.Context, path string, payload any) (ports.AuthResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("encode auth request: %w", err)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.AuthResult{}, handleErrorResponse(resp)
	}
	return c.decodeResult(resp.Body)
}

func handleErrorResponse(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.Join(&StatusError{StatusCode: resp.StatusCode}, fmt.Errorf("read auth error response: %w", err))
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: extractDetail(raw)}
}

// extractDetail reads {"detail": "..."}. Structured details (validation
// lists) are passed through as compact JSON.
func extractDetail(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, env.Detail); err != nil {
		return ""
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}

type wireUser struct {
	ID         flexID `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	PatientRef *int   `json:"patient_id"`
}

func (c *Client) decodeResult(r io.Reader) (ports.AuthResult, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ports.AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}

	tok, err := jmespath.Search(c.tokenPath, doc)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("evaluate token path: %w", err)
	}
	token, _ := tok.(string)
	if token == "" {
		return ports.AuthResult{}, errors.New("auth response missing token")
	}

	u, err := jmespath.Search(c.userPath, doc)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("evaluate user path: %w", err)
	}
	userObj, ok := u.(map[string]any)
	if !ok {
		return ports.AuthResult{}, errors.New("auth response missing user")
	}
	raw, err := json.Marshal(userObj)
	if err != nil {
		return ports.AuthResult{}, fmt.Errorf("re-encode auth user: %w", err)
	}
	var wu wireUser
	if err := json.Unmarshal(raw, &wu); err != nil {
		return ports.AuthResult{}, fmt.Errorf("decode auth user: %w", err)
	}

	id := domainauth.Identity{
		ID:         string(wu.ID),
		Email:      wu.Email,
		Name:       wu.Name,
		PatientRef: wu.PatientRef,
	}
	// Unknown role strings are treated as absent so the caller's precedence applies.
	if role, ok := domainauth.ParseRole(wu.Role); ok {
		id.Role = role
	}
	return ports.AuthResult{Token: token, Identity: id}, nil
}

// flexID accepts a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}
