package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
// The browser profile is included when ProfileSession runs first.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			}
			if id := ProfileIDFromContext(r.Context()); id != "" {
				attrs = append(attrs, slog.String("profile", id))
			}
			logger.Info("http", attrs...)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush lets streaming proxy responses pass through the logger.
func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionManagerFactory builds a hydrated session manager for a browser profile.
type SessionManagerFactory interface {
	ForProfile(ctx context.Context, profileID string) *service.SessionManager
}

// ProfileSessionOptions configures ProfileSession.
type ProfileSessionOptions struct {
	Managers     SessionManagerFactory
	CookieName   string
	CookieDomain string
}

// ProfileSession identifies the browser profile by cookie, minting one when
// absent or malformed, and attaches that profile's session manager to the context.
// The manager lives for the request only; state persists in the session store.
func ProfileSession(opts ProfileSessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				if id, perr := uuid.Parse(c.Value); perr == nil {
					profileID = id.String()
				}
			}
			if profileID == "" {
				profileID = uuid.NewString()
				setCookie(w, r, cookieParams{
					Name:   opts.CookieName,
					Value:  profileID,
					Domain: opts.CookieDomain,
					MaxAge: profileCookieMaxAge,
				})
			}

			ctx := SetProfileIDInContext(r.Context(), profileID)
			m := opts.Managers.ForProfile(ctx, profileID)
			defer m.Teardown()

			next.ServeHTTP(w, r.WithContext(SetManagerInContext(ctx, m)))
		})
	}
}

// Guard applies the route guard to page navigations (GET and HEAD of known pages).
// Anonymous visitors of protected pages go to /login; authenticated visitors of
// /login or /register go to their home page. Other requests pass through.
func Guard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if !routing.IsKnown(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			m, ok := ManagerFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			d := routing.Evaluate(r.URL.Path, m.Permissions())
			switch d.Kind {
			case routing.RedirectLogin, routing.RedirectHome:
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// wantsJSON reports whether the client asked for a JSON response rather than HTML.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// isJSONBody reports whether the request body is JSON.
func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
