package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://localhost:8000/"})
	require.NoError(t, err)
	assert.NotNil(t, c.client.Jar)
}

func TestLogin_Success(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":7,"email":"a@x.com","name":"A","role":"staff"}}`))
	})

	res, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tk", res.Token)
	assert.Equal(t, "7", res.Identity.ID)
	assert.Equal(t, domainauth.RoleStaff, res.Identity.Role)

	assert.Equal(t, "a@x.com", got["email"])
	assert.Equal(t, "pw", got["password"])
	_, hasRole := got["role"]
	assert.False(t, hasRole, "role omitted when not requested")
}

func TestLogin_SendsRequestedRole(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":"u-1","email":"a@x.com","name":"A"}}`))
	})

	role := domainauth.RoleAdmin
	res, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@x.com", Password: "pw", Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "admin", got["role"])
	assert.Equal(t, "u-1", res.Identity.ID)
	assert.Empty(t, res.Identity.Role)
}

func TestLogin_UnknownRoleTreatedAsAbsent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":1,"email":"a@x.com","name":"A","role":"dentist"}}`))
	})

	res, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, res.Identity.Role)
}

func TestLogin_StatusErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{"structured detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["email"]}]}`, `[{"loc":["email"]}]`},
		{"no detail", http.StatusInternalServerError, `oops`, ""},
		{"null detail", http.StatusBadRequest, `{"detail":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), ports.LoginRequest{Email: "a", Password: "b"})
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.detail, se.Detail)

			var um interface{ UserMessage() string }
			require.ErrorAs(t, err, &um)
			assert.Equal(t, tt.detail, um.UserMessage())
		})
	}
}

func TestLogin_MalformedResponse(t *testing.T) {
	tests := map[string]string{
		"not json":     `<html>`,
		"missing user": `{"token":"tk"}`,
		"empty token":  `{"token":"","user":{"id":1}}`,
		"bad id":       `{"token":"tk","user":{"id":true}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.Login(context.Background(), ports.LoginRequest{Email: "a", Password: "b"})
			assert.Error(t, err)
		})
	}
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Login(context.Background(), ports.LoginRequest{Email: "a", Password: "b"})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestRegister_FlattensExtras(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":3,"email":"p@x.com","name":"P","role":"patient","patient_id":12}}`))
	})

	res, err := c.Register(context.Background(), ports.RegisterRequest{
		Email:    "p@x.com",
		Password: "pw",
		Name:     "P",
		Role:     domainauth.RolePatient,
		Extra:    map[string]any{"phone": "555", "role": "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "555", got["phone"])
	assert.Equal(t, "patient", got["role"], "fixed fields win over extras")
	require.NotNil(t, res.Identity.PatientRef)
	assert.Equal(t, 12, *res.Identity.PatientRef)
}

func TestClient_KeepsBackendCookies(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "backend_sid", Value: "s1", Path: "/"})
		} else {
			ck, err := r.Cookie("backend_sid")
			if assert.NoError(t, err) {
				assert.Equal(t, "s1", ck.Value)
			}
		}
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":1}}`))
	})

	for range 2 {
		_, err := c.Login(context.Background(), ports.LoginRequest{Email: "a", Password: "b"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestLogin_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tk","user":{"id":1}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Login(ctx, ports.LoginRequest{Email: "a", Password: "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogin_CustomResponsePaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"session":{"jwt":"tk-9"},"account":{"id":7,"email":"a@b.com","role":"admin"}}}`))
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		BaseURL:   srv.URL,
		TokenPath: "data.session.jwt",
		UserPath:  "data.account",
	})
	require.NoError(t, err)

	res, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tk-9", res.Token)
	assert.Equal(t, "7", res.Identity.ID)
	assert.Equal(t, domainauth.RoleAdmin, res.Identity.Role)
}

func TestLogin_AccessTokenFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"at-1","user":{"id":"u1"}}`))
	})

	res, err := c.Login(context.Background(), ports.LoginRequest{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "at-1", res.Token)
}

func TestNewClient_InvalidPath(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost:8000", TokenPath: "data.["})
	require.Error(t, err)
}
