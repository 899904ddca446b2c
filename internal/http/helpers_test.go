package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UdayGopi/Dental-Clinic/config"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/memory"
	mockauth "github.com/UdayGopi/Dental-Clinic/internal/mocks/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
	"github.com/UdayGopi/Dental-Clinic/internal/testutil"
)

// portal drives the full router like a single browser profile, carrying cookies between requests.
type portal struct {
	t       *testing.T
	handler http.Handler
	kv      *memory.Store
	logs    *testutil.LogBuffer
	cookies map[string]*http.Cookie
}

type portalOptions struct {
	Backend   ports.AuthBackend
	APITarget *url.URL
	AdminCode string
	RateLimit config.RateLimitConfig
}

func newPortal(t *testing.T, opts portalOptions) *portal {
	t.Helper()
	if opts.Backend == nil {
		opts.Backend = mockauth.NewMockAuthBackend()
	}
	logger, logs := testutil.NewTestLogger()
	kv := memory.NewStore()
	managers := service.NewSessionManagers(service.SessionManagersOptions{
		KV:        kv,
		Backend:   opts.Backend,
		KeyPrefix: config.DefaultSessionKeyPrefix,
		Logger:    logger,
	})
	h, err := NewRouter(RouterServices{
		Managers:       managers,
		TemplateFS:     os.DirFS(TemplatePathFromTest),
		APIProxyTarget: opts.APITarget,
		AdminCode:      opts.AdminCode,
		AuthRateLimit:  opts.RateLimit,
		Logger:         logger,
	})
	require.NoError(t, err)
	return &portal{t: t, handler: h, kv: kv, logs: logs, cookies: map[string]*http.Cookie{}}
}

func (p *portal) do(req *http.Request) *httptest.ResponseRecorder {
	p.t.Helper()
	for _, c := range p.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		p.cookies[c.Name] = c
	}
	return rec
}

func (p *portal) get(path string) *httptest.ResponseRecorder {
	return p.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (p *portal) getJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return p.do(req)
}

func (p *portal) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req)
}

func (p *portal) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return p.do(req)
}

func (p *portal) login(email string) {
	p.t.Helper()
	rec := p.postForm(PathAuthLogin, url.Values{"email": {email}, "password": {"pw"}})
	require.Equal(p.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func (p *portal) profileID() string {
	c, ok := p.cookies[config.DefaultProfileCookie]
	if !ok {
		return ""
	}
	return c.Value
}
