package httpx

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	dentalclinic "github.com/UdayGopi/Dental-Clinic"
	"github.com/UdayGopi/Dental-Clinic/config"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Managers SessionManagerFactory
	// Optional: template filesystem. Defaults to disk in dev mode, embedded otherwise.
	TemplateFS fs.FS
	// Optional: when nil, /api is not mounted.
	APIProxyTarget *url.URL
	CookieName     string
	CookieDomain   string
	AdminCode      string
	// Optional: zero value disables throttling of login and registration.
	AuthRateLimit config.RateLimitConfig
	// Optional: checked by /healthz.
	Health Pinger
	IsDev  bool         // Re-parse templates and serve static files from disk
	Logger *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates the portal handler: pages, auth endpoints, static assets,
// and the optional API proxy, wrapped in recovery, logging, profile session,
// and route guard middleware.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookieName := services.CookieName
	if cookieName == "" {
		cookieName = config.DefaultProfileCookie
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services),
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	mux := http.NewServeMux()
	authHandlers := &AuthHandlers{Renderer: renderer, AdminCode: services.AdminCode, Logger: logger}
	pageHandlers := &PageHandlers{Renderer: renderer}

	limit := RateLimit(RateLimitOptions{
		Requests: services.AuthRateLimit.Requests,
		Window:   services.AuthRateLimit.Window,
		Burst:    services.AuthRateLimit.Burst,
		Renderer: renderer,
		Logger:   logger,

		TrustProxyHeaders: services.AuthRateLimit.TrustProxyHeaders,
	})
	registerAuthRoutes(mux, authHandlers, limit)
	registerPageRoutes(mux, pageHandlers, authHandlers)
	mux.Handle("GET /healthz", healthHandler(services.Health, logger))
	mux.Handle("HEAD /healthz", healthHandler(services.Health, logger))
	mux.Handle("GET /static/", staticHandler(services.IsDev))

	if services.APIProxyTarget != nil {
		proxy, perr := NewAPIProxy(APIProxyOptions{Target: services.APIProxyTarget, Logger: logger})
		if perr != nil {
			return nil, perr
		}
		mux.Handle(APIPrefix+"/", proxy)
	}

	mux.Handle("/", notFoundHandler(renderer))

	var h http.Handler = mux
	h = Guard()(h)
	h = Logging(logger)(h)
	h = ProfileSession(ProfileSessionOptions{
		Managers:     services.Managers,
		CookieName:   cookieName,
		CookieDomain: services.CookieDomain,
	})(h)
	h = Recover(logger)(h)
	return h, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, limit func(http.Handler) http.Handler) {
	mux.Handle("POST "+PathAuthLogin, limit(http.HandlerFunc(h.Login)))
	mux.Handle("POST "+PathAuthRegister, limit(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST "+PathAuthLogout, h.Logout)
	mux.HandleFunc("GET "+PathAuthStatus, h.Status)
}

func registerPageRoutes(mux *http.ServeMux, pages *PageHandlers, auth *AuthHandlers) {
	mux.HandleFunc("GET /{$}", pages.Landing)
	mux.HandleFunc("GET "+routing.PathLogin, auth.LoginPage)
	mux.HandleFunc("GET "+routing.PathRegister, auth.RegisterPage)
	for _, p := range routing.ProtectedPaths() {
		mux.HandleFunc("GET "+p, pages.Portal)
	}
}

func templateFS(services RouterServices) fs.FS {
	if services.TemplateFS != nil {
		return services.TemplateFS
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(dentalclinic.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(true, http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	staticSub, err := fs.Sub(dentalclinic.StaticFS, "frontend/static")
	if err != nil {
		return staticWithCacheHeaders(false, http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(false, http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

func staticWithCacheHeaders(isDev bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		next.ServeHTTP(w, r)
	})
}

// notFoundHandler renders the HTML 404 page for browsers and JSON otherwise.
func notFoundHandler(renderer *TemplateRenderer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) || strings.HasPrefix(r.URL.Path, "/auth/") {
			WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "not found"})
			return
		}
		renderer.RenderError(w, http.StatusNotFound, "The page you are looking for does not exist.")
	})
}
