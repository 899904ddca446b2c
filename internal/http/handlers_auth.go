package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/nav"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
	apperrors "github.com/UdayGopi/Dental-Clinic/internal/errors"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

var errNoSession = errors.New("no session manager for request")

// AuthHandlers serves the sign-in, registration, and status endpoints.
type AuthHandlers struct {
	Renderer  *TemplateRenderer
	AdminCode string
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// manager returns the request's session manager or writes a 500.
func (h *AuthHandlers) manager(w http.ResponseWriter, r *http.Request) (*service.SessionManager, bool) {
	m, ok := ManagerFromContext(r.Context())
	if !ok {
		h.logger().ErrorContext(r.Context(), "session middleware not installed", "path", r.URL.Path)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: errNoSession})
		return nil, false
	}
	return m, true
}

// render writes an HTML page, falling back to the error page.
func (h *AuthHandlers) render(w http.ResponseWriter, status int, name string, data PageData) {
	if h.Renderer == nil {
		http.Error(w, data.Error, status)
		return
	}
	if err := h.Renderer.Render(w, status, name, data); err != nil {
		h.Renderer.RenderError(w, http.StatusInternalServerError, "Unable to render page")
	}
}

// LoginPage renders the sign-in form.
// GET /login?role=<optional>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	m, _ := ManagerFromContext(r.Context())
	data := newPageData(m, routing.PathLogin)
	if role, ok := domainauth.ParseRole(r.URL.Query().Get("role")); ok {
		data.Form.Role = string(role)
	}
	h.render(w, http.StatusOK, "login", data)
}

// RegisterPage renders the registration form. The role defaults to patient.
// GET /register?role=<optional>.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	m, _ := ManagerFromContext(r.Context())
	data := newPageData(m, routing.PathRegister)
	data.Form.Role = string(domainauth.RolePatient)
	if role, ok := domainauth.ParseRole(r.URL.Query().Get("role")); ok {
		data.Form.Role = string(role)
	}
	h.render(w, http.StatusOK, "register", data)
}

// Login authenticates the profile. Backend failures still sign in with a demo
// session; only empty credentials are rejected.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	in, form, ok := readLogin(w, r)
	if !ok {
		return
	}

	_, err := m.Login(r.Context(), in)
	if err != nil {
		status, code := StatusForError(err)
		if wantsJSON(r) {
			WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: err})
			return
		}
		data := newPageData(m, routing.PathLogin)
		data.Form = form
		data.Error = userMessage(err, "Sign in failed. Please try again.")
		h.render(w, status, "login", data)
		return
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, newStatusBody(m))
		return
	}
	http.Redirect(w, r, routing.HomeFor(m.Permissions()), http.StatusSeeOther)
}

// Register creates an account. When the backend fails the profile is still
// signed in with a demo account and the failure is reported with 502.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	jsonReq := isJSONBody(r)
	var (
		in   service.RegisterInput
		form FormValues
	)
	if jsonReq {
		if in, form, ok = readRegisterJSON(w, r); !ok {
			return
		}
	} else {
		var verr error
		in, form, verr = readRegisterForm(r, h.AdminCode)
		if verr != nil {
			h.registerFailed(w, r, m, form, verr)
			return
		}
	}

	if _, err := m.Register(r.Context(), in); err != nil {
		h.logger().InfoContext(r.Context(), "registration failed",
			"error", err, "role", string(in.Role), "state", m.State().String())
		h.registerFailed(w, r, m, form, err)
		return
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusCreated, newStatusBody(m))
		return
	}
	http.Redirect(w, r, routing.HomeFor(m.Permissions()), http.StatusSeeOther)
}

func (h *AuthHandlers) registerFailed(
	w http.ResponseWriter,
	r *http.Request,
	m *service.SessionManager,
	form FormValues,
	err error,
) {
	status, code := StatusForError(err)
	if wantsJSON(r) {
		WriteJSON(w, status, map[string]any{
			"error":   code,
			"message": err.Error(),
			"field":   apperrors.GetField(err),
			"session": newStatusBody(m),
		})
		return
	}
	data := newPageData(m, routing.PathRegister)
	data.Form = form
	data.Error = userMessage(err, "Registration failed")
	h.render(w, status, "register", data)
}

// Logout clears the profile's session.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	m.Logout(r.Context())

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": redirectURI,
		})
		return
	}
	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// Status reports the profile's session and nav.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, newStatusBody(m))
}

// statusBody is the JSON view of a profile's session.
type statusBody struct {
	Authenticated bool                   `json:"authenticated"`
	State         string                 `json:"state"`
	User          *domainauth.Identity   `json:"user"`
	Permissions   domainauth.Permissions `json:"permissions"`
	Nav           []nav.Item             `json:"nav"`
	Subtitle      string                 `json:"subtitle,omitempty"`
	Home          string                 `json:"home,omitempty"`
}

// newStatusBody derives every field from one snapshot of the manager.
func newStatusBody(m *service.SessionManager) statusBody {
	state, id := m.Snapshot()
	body := statusBody{
		State:       state.String(),
		Permissions: domainauth.PermissionsFor(id),
		Nav:         []nav.Item{},
	}
	if id != nil {
		body.Authenticated = true
		body.User = id
		body.Nav = nav.Resolve(string(id.Role))
		body.Subtitle = nav.PortalTitle(string(id.Role))
		body.Home = routing.HomeFor(body.Permissions)
	}
	return body
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
