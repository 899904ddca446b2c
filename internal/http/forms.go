package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	apperrors "github.com/UdayGopi/Dental-Clinic/internal/errors"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

const msgRequiredFields = "Please fill all required fields"

// roleFields lists the extra registration fields each role must supply on the form.
var roleFields = map[domainauth.Role][]string{
	domainauth.RoleStaff: {"employee_id", "department", "phone_number", "shift_timing"},
	domainauth.RoleAdmin: {"admin_code", "access_level", "designation"},
}

// fixedRegisterFields are never copied into RegisterInput.Extra.
var fixedRegisterFields = map[string]bool{"email": true, "password": true, "name": true, "role": true}

// parseOptionalRole treats "" as no role and rejects anything outside the closed set.
func parseOptionalRole(s string) (*domainauth.Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	role, ok := domainauth.ParseRole(s)
	if !ok {
		return nil, apperrors.ValidationField("role", fmt.Sprintf("invalid role %q", s))
	}
	return &role, nil
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// readLogin parses a JSON or form login body. ok is false when a response was already written.
func readLogin(w http.ResponseWriter, r *http.Request) (service.LoginInput, FormValues, bool) {
	var p loginPayload
	if isJSONBody(r) {
		if !DecodeJSON(w, r, &p) {
			return service.LoginInput{}, FormValues{}, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return service.LoginInput{}, FormValues{}, false
		}
		p = loginPayload{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Role:     r.PostForm.Get("role"),
		}
	}

	form := FormValues{Email: strings.TrimSpace(p.Email), Role: p.Role}
	// Unknown roles are dropped; inference decides instead.
	role, _ := parseOptionalRole(p.Role)
	return service.LoginInput{Email: form.Email, Password: p.Password, Role: role}, form, true
}

// readRegisterJSON maps a JSON object onto RegisterInput; unknown keys become Extra.
func readRegisterJSON(w http.ResponseWriter, r *http.Request) (service.RegisterInput, FormValues, bool) {
	var body map[string]any
	if !DecodeJSON(w, r, &body) {
		return service.RegisterInput{}, FormValues{}, false
	}
	str := func(k string) string {
		s, _ := body[k].(string)
		return s
	}
	in := service.RegisterInput{
		Email:    strings.TrimSpace(str("email")),
		Password: str("password"),
		Name:     strings.TrimSpace(str("name")),
		Role:     domainauth.Role(strings.TrimSpace(str("role"))),
	}
	for k, v := range body {
		if fixedRegisterFields[k] {
			continue
		}
		if in.Extra == nil {
			in.Extra = make(map[string]any)
		}
		in.Extra[k] = v
	}
	return in, FormValues{Email: in.Email, Name: in.Name, Role: string(in.Role)}, true
}

// readRegisterForm parses the browser form and applies the per-role field checks.
// A validation failure is returned as err with the echoed form values.
func readRegisterForm(r *http.Request, adminCode string) (service.RegisterInput, FormValues, error) {
	if err := r.ParseForm(); err != nil {
		return service.RegisterInput{}, FormValues{}, apperrors.Validation("malformed form body")
	}
	get := func(k string) string { return strings.TrimSpace(r.PostForm.Get(k)) }

	role := domainauth.Role(get("role"))
	if role == "" {
		role = domainauth.RolePatient
	}
	form := FormValues{
		Email:       get("email"),
		Name:        get("name"),
		Role:        string(role),
		EmployeeID:  get("employee_id"),
		Department:  get("department"),
		PhoneNumber: get("phone_number"),
		ShiftTiming: get("shift_timing"),
		Designation: get("designation"),
		AccessLevel: get("access_level"),
	}
	in := service.RegisterInput{
		Email:    form.Email,
		Password: r.PostForm.Get("password"),
		Name:     form.Name,
		Role:     role,
	}
	if !role.Valid() {
		return in, form, apperrors.ValidationField("role", fmt.Sprintf("invalid role %q", role))
	}

	for _, k := range roleFields[role] {
		v := get(k)
		if v == "" {
			return in, form, apperrors.Validation(msgRequiredFields)
		}
		if in.Extra == nil {
			in.Extra = make(map[string]any)
		}
		in.Extra[k] = v
	}
	if role == domainauth.RoleAdmin && adminCode != "" && get("admin_code") != adminCode {
		return in, form, apperrors.ValidationField("admin_code",
			"Invalid admin code. Please contact system administrator.")
	}
	return in, form, nil
}

// userMessage picks the text shown to a person for err.
func userMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if errors.Is(err, domainauth.ErrInvalidCredentials) {
		return "Email and password are required"
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation {
		return appErr.Message
	}
	return fallback
}
