package httpx

import (
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/nav"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

// UserView is the signed-in account as shown in the header.
type UserView struct {
	Name  string
	Email string
	Role  string
}

// FormValues echoes submitted fields back into a re-rendered form.
// Passwords and the admin code are never echoed.
type FormValues struct {
	Email       string
	Name        string
	Role        string
	EmployeeID  string
	Department  string
	PhoneNumber string
	ShiftTiming string
	Designation string
	AccessLevel string
}

// PageData is shared by every template.
type PageData struct {
	Title       string
	Subtitle    string
	CurrentPath string
	Home        string
	Error       string
	Nav         []nav.Item
	User        *UserView
	Form        FormValues
}

// pageTitles names each page; protected pages not listed fall back to the path.
var pageTitles = map[string]string{
	routing.PathLanding:          "Welcome",
	routing.PathLogin:            "Sign in",
	routing.PathRegister:         "Create account",
	routing.PathDashboard:        "Dashboard",
	"/patients":                  "Patients",
	"/appointments":              "Appointments",
	"/messages":                  "Messages",
	"/templates":                 "Templates",
	"/broadcasts":                "Broadcasts",
	"/analytics":                 "Analytics",
	"/audit-logs":                "Audit Logs",
	nav.AdminManagementPath:      "Admin Management",
	routing.PathPatientDashboard: "My Dashboard",
	"/patient-appointments":      "My Appointments",
	"/patient-messages":          "My Messages",
}

func titleFor(path string) string {
	if t, ok := pageTitles[path]; ok {
		return t
	}
	return path
}

// displayUser falls back to "User" when the identity has no name.
func displayUser(id domainauth.Identity) *UserView {
	name := id.Name
	if name == "" {
		name = "User"
	}
	return &UserView{Name: name, Email: id.Email, Role: string(id.Role)}
}

// newPageData builds the layout data for path from the manager's current state.
// Nav and subtitle are resolved from the stored role string as-is.
func newPageData(m *service.SessionManager, path string) PageData {
	data := PageData{Title: titleFor(path), CurrentPath: path}
	if m == nil {
		return data
	}
	if _, id := m.Snapshot(); id != nil {
		data.User = displayUser(*id)
		data.Nav = nav.Resolve(string(id.Role))
		data.Subtitle = nav.PortalTitle(string(id.Role))
		data.Home = routing.HomeFor(domainauth.PermissionsFor(id))
	}
	return data
}
