package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayGopi/Dental-Clinic/internal/adapters/authapi"
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
	mockauth "github.com/UdayGopi/Dental-Clinic/internal/mocks/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

func decodeStatus(t *testing.T, raw []byte) statusBody {
	t.Helper()
	var body statusBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestAuthHandlers_LoginForm_RedirectsHome(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postForm(PathAuthLogin, url.Values{
		"email":    {"doc@clinic.com"},
		"password": {"pw"},
		"role":     {"staff"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routing.PathDashboard, rec.Header().Get("Location"))
	calls := backend.LoginCalls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Role)
	assert.Equal(t, domainauth.RoleStaff, *calls[0].Role)
}

func TestAuthHandlers_LoginForm_UnknownRoleIsIgnored(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postForm(PathAuthLogin, url.Values{"email": {"admin@clinic.com"}, "password": {"pw"}, "role": {"root"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, backend.LoginCalls(), 1)
	assert.Nil(t, backend.LoginCalls()[0].Role)
}

func TestAuthHandlers_LoginJSON(t *testing.T) {
	p := newPortal(t, portalOptions{})

	rec := p.postJSON(PathAuthLogin, `{"email":"admin@clinic.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeStatus(t, rec.Body.Bytes())
	assert.True(t, body.Authenticated)
	assert.Equal(t, "authenticated", body.State)
	assert.Equal(t, domainauth.RoleAdmin, body.User.Role)
	assert.True(t, body.Permissions.IsAdmin)
	assert.True(t, body.Permissions.IsStaff)
	assert.Len(t, body.Nav, 9)
	assert.Equal(t, "Admin Portal", body.Subtitle)
	assert.Equal(t, routing.PathDashboard, body.Home)
}

func TestAuthHandlers_LoginEmptyCredentials(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postForm(PathAuthLogin, url.Values{"email": {"jane@x.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email and password are required")
	assert.Contains(t, rec.Body.String(), `value="jane@x.com"`)

	rec = p.postJSON(PathAuthLogin, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalid_credentials"`)

	assert.Empty(t, backend.LoginCalls())
	assert.Equal(t, 0, p.kv.Len())
}

func TestAuthHandlers_LoginMalformedJSON(t *testing.T) {
	p := newPortal(t, portalOptions{})

	rec := p.postJSON(PathAuthLogin, `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalid_json"`)
}

func TestAuthHandlers_LoginBackendDown_SignsInWithDemoSession(t *testing.T) {
	p := newPortal(t, portalOptions{Backend: mockauth.NewUnreachableBackend()})

	rec := p.postForm(PathAuthLogin, url.Values{"email": {"staff@clinic.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routing.PathDashboard, rec.Header().Get("Location"))

	body := decodeStatus(t, p.getJSON(PathAuthStatus).Body.Bytes())
	require.True(t, body.Authenticated)
	assert.Equal(t, domainauth.PlaceholderID, body.User.ID)
	assert.Equal(t, "staff", body.User.Name)
	assert.Contains(t, p.logs.String(), "using local demo session")
}

func TestAuthHandlers_RegisterForm_Patient(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postForm(PathAuthRegister, url.Values{
		"name":     {"Jane"},
		"email":    {"jane@x.com"},
		"password": {"pw"},
		"role":     {"patient"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routing.PathPatientDashboard, rec.Header().Get("Location"))
	calls := backend.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Jane", calls[0].Name)
	assert.Equal(t, domainauth.RolePatient, calls[0].Role)
	assert.Empty(t, calls[0].Extra)
}

func TestAuthHandlers_RegisterForm_StaffFields(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	form := url.Values{
		"name":        {"Sam"},
		"email":       {"sam@clinic.com"},
		"password":    {"pw"},
		"role":        {"staff"},
		"employee_id": {"E-7"},
		"department":  {"Hygiene"},
	}
	rec := p.postForm(PathAuthRegister, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill all required fields")
	assert.Contains(t, rec.Body.String(), `value="E-7"`)
	assert.Empty(t, backend.RegisterCalls())

	form.Set("phone_number", "555-0100")
	form.Set("shift_timing", "morning")
	rec = p.postForm(PathAuthRegister, form)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	calls := backend.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"employee_id":  "E-7",
		"department":   "Hygiene",
		"phone_number": "555-0100",
		"shift_timing": "morning",
	}, calls[0].Extra)
}

func TestAuthHandlers_RegisterForm_AdminCode(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend, AdminCode: "letmein"})

	form := url.Values{
		"name":         {"Ada"},
		"email":        {"ada@clinic.com"},
		"password":     {"pw"},
		"role":         {"admin"},
		"admin_code":   {"wrong"},
		"designation":  {"Director"},
		"access_level": {"full"},
	}
	rec := p.postForm(PathAuthRegister, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid admin code")
	assert.NotContains(t, rec.Body.String(), "wrong")
	assert.Empty(t, backend.RegisterCalls())

	form.Set("admin_code", "letmein")
	rec = p.postForm(PathAuthRegister, form)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routing.PathDashboard, rec.Header().Get("Location"))
}

func TestAuthHandlers_RegisterForm_InvalidRole(t *testing.T) {
	p := newPortal(t, portalOptions{})

	rec := p.postForm(PathAuthRegister, url.Values{"email": {"a@b.com"}, "password": {"pw"}, "role": {"owner"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid role")
}

func TestAuthHandlers_RegisterBackendDown_SignsInAndReportsFailure(t *testing.T) {
	p := newPortal(t, portalOptions{Backend: mockauth.NewUnreachableBackend()})

	rec := p.postForm(PathAuthRegister, url.Values{
		"name":     {"Jane"},
		"email":    {"jane@x.com"},
		"password": {"pw"},
		"role":     {"patient"},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration failed")
	assert.Contains(t, rec.Body.String(), "A demo account is active")

	// The fallback session is usable right away.
	rec = p.get(routing.PathPatientDashboard)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane")
}

func TestAuthHandlers_RegisterBackendDetailIsShown(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	backend.RegisterFunc = func(context.Context, ports.RegisterRequest) (ports.AuthResult, error) {
		return ports.AuthResult{}, &authapi.StatusError{StatusCode: http.StatusBadRequest, Detail: "Email already registered"}
	}
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postForm(PathAuthRegister, url.Values{"name": {"J"}, "email": {"j@x.com"}, "password": {"pw"}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

func TestAuthHandlers_RegisterJSON(t *testing.T) {
	backend := mockauth.NewMockAuthBackend()
	p := newPortal(t, portalOptions{Backend: backend})

	rec := p.postJSON(PathAuthRegister,
		`{"email":"jo@x.com","password":"pw","name":"Jo","role":"patient","date_of_birth":"1990-01-01"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeStatus(t, rec.Body.Bytes()).Authenticated)
	calls := backend.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"date_of_birth": "1990-01-01"}, calls[0].Extra)
}

func TestAuthHandlers_RegisterJSON_BackendDown(t *testing.T) {
	p := newPortal(t, portalOptions{Backend: mockauth.NewUnreachableBackend()})

	rec := p.postJSON(PathAuthRegister, `{"email":"jo@x.com","password":"pw","name":"Jo","role":"staff"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body struct {
		Error   string     `json:"error"`
		Session statusBody `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Error)
	assert.True(t, body.Session.Authenticated)
	assert.Equal(t, domainauth.RoleStaff, body.Session.User.Role)
	assert.Nil(t, body.Session.User.PatientRef)
}

func TestAuthHandlers_Logout(t *testing.T) {
	p := newPortal(t, portalOptions{})
	p.login("staff@clinic.com")
	profile := p.profileID()

	rec := p.postForm(PathAuthLogout, url.Values{"redirect_uri": {"https://evil.example/"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, p.kv.Len())
	assert.Equal(t, profile, p.profileID())

	rec = p.get(routing.PathDashboard)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routing.PathLogin, rec.Header().Get("Location"))

	// Logging out twice is harmless.
	rec = p.postJSON(PathAuthLogout, `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect_to":"/"`)
}

func TestAuthHandlers_StatusAnonymous(t *testing.T) {
	p := newPortal(t, portalOptions{})

	rec := p.getJSON(PathAuthStatus)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"authenticated": false,
		"state": "anonymous",
		"user": null,
		"permissions": {"is_authenticated": false, "is_admin": false, "is_staff": false, "is_patient": false},
		"nav": []
	}`, rec.Body.String())
}

func TestAuthHandlers_LoginPagePreselectsRole(t *testing.T) {
	p := newPortal(t, portalOptions{})

	rec := p.get(routing.PathLogin + "?role=staff")
	assert.Contains(t, rec.Body.String(), `<option value="staff" selected>`)

	rec = p.get(routing.PathRegister)
	assert.Contains(t, rec.Body.String(), `<option value="patient" selected>`)

	rec = p.get(routing.PathRegister + "?role=admin")
	assert.Contains(t, rec.Body.String(), `<option value="admin" selected>`)
}

func TestAuthHandlers_NoManagerInContext(t *testing.T) {
	h := &AuthHandlers{}
	rec := httptest.NewRecorder()

	h.Status(rec, httptest.NewRequest(http.MethodGet, PathAuthStatus, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
