// Package nav resolves the navigation chrome shown for a role.
package nav

import (
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
)

// Item is one navigation entry.
type Item struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// AdminManagementPath is the only entry that separates admin from staff.
const AdminManagementPath = "/admin-management"

var staffItems = []Item{
	{Path: "/dashboard", Label: "Dashboard", Icon: "home"},
	{Path: "/patients", Label: "Patients", Icon: "users"},
	{Path: "/appointments", Label: "Appointments", Icon: "calendar"},
	{Path: "/messages", Label: "Messages", Icon: "envelope"},
	{Path: "/templates", Label: "Templates", Icon: "file"},
	{Path: "/broadcasts", Label: "Broadcasts", Icon: "bullhorn"},
	{Path: "/analytics", Label: "Analytics", Icon: "chart"},
	{Path: "/audit-logs", Label: "Audit Logs", Icon: "history"},
}

var adminManagement = Item{Path: AdminManagementPath, Label: "Admin Management", Icon: "user-shield"}

var patientItems = []Item{
	{Path: "/patient-dashboard", Label: "My Dashboard", Icon: "home"},
	{Path: "/patient-appointments", Label: "My Appointments", Icon: "calendar"},
	{Path: "/patient-messages", Label: "My Messages", Icon: "envelope"},
}

// Resolve returns the ordered nav items for the explicit role string.
// Unrecognized or empty roles get the full admin set.
func Resolve(role string) []Item {
	switch domainauth.Role(role) {
	case domainauth.RoleStaff:
		return clone(staffItems)
	case domainauth.RolePatient:
		return clone(patientItems)
	default:
		return append(clone(staffItems), adminManagement)
	}
}

// PortalTitle is the header subtitle for a role.
func PortalTitle(role string) string {
	switch domainauth.Role(role) {
	case domainauth.RolePatient:
		return "Patient Portal"
	case domainauth.RoleAdmin:
		return "Admin Portal"
	case domainauth.RoleStaff:
		return "Staff Portal"
	default:
		return "Messaging System"
	}
}

func clone(items []Item) []Item {
	out := make([]Item, len(items), len(items)+1)
	copy(out, items)
	return out
}
