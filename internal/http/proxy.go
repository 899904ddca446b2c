package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// APIPrefix is the browser-facing mount point of the clinic API.
const APIPrefix = "/api"

// authSubtree paths carry credentials in the body and never get a bearer header.
const authSubtree = APIPrefix + "/auth/"

// APIProxyOptions configures NewAPIProxy.
type APIProxyOptions struct {
	Target *url.URL
	Logger *slog.Logger
}

// NewAPIProxy forwards /api/* unchanged to the clinic API, attaching the profile's bearer
// token when the session is authenticated. Incoming Authorization headers are
// replaced so the browser cannot choose the credential.
func NewAPIProxy(opts APIProxyOptions) (http.Handler, error) {
	if opts.Target == nil || opts.Target.Host == "" {
		return nil, errors.New("api proxy target is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	target := opts.Target

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Authorization")
			if strings.HasPrefix(pr.In.URL.Path, authSubtree) {
				return
			}
			if m, ok := ManagerFromContext(pr.In.Context()); ok {
				if token, ok := m.Token(); ok {
					pr.Out.Header.Set("Authorization", "Bearer "+token)
				}
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WarnContext(r.Context(), "api proxy request failed",
				"error", err, "path", r.URL.Path, "profile", ProfileIDFromContext(r.Context()))
			WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "unavailable", Err: errors.New("clinic API unreachable")})
		},
	}
	return rp, nil
}
