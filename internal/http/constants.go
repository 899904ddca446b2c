package httpx

// Template paths used for loading templates in tests and production.
const (
	// Template directory paths.
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Auth endpoints.
const (
	PathAuthLogin    = "/auth/login"
	PathAuthRegister = "/auth/register"
	PathAuthLogout   = "/auth/logout"
	PathAuthStatus   = "/auth/status"
)
