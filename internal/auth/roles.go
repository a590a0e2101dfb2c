package auth

import (
	"github.com/procureflow/procureflow/internal/db/models"
)

// Permission identifies a single capability a role may grant.
type Permission string

const (
	// PermProcurementConsole allows access to the procurement review console.
	PermProcurementConsole Permission = "canAccessProcurementConsole"
	// PermRequestorConsole allows access to the requestor console.
	PermRequestorConsole Permission = "canAccessRequestorConsole"
	// PermDashboard allows viewing the reporting dashboard.
	PermDashboard Permission = "canAccessDashboard"
	// PermManageUsers allows user account administration.
	PermManageUsers Permission = "canManageUsers"
	// PermViewReports allows viewing procurement reports.
	PermViewReports Permission = "canViewReports"
	// PermFusion allows access to the finance integration area.
	PermFusion Permission = "canAccessFusion"
	// PermSpotdraft allows access to the contract tooling area.
	PermSpotdraft Permission = "canAccessSpotdraft"
	// PermCreatePSR allows creating procurement service requests.
	PermCreatePSR Permission = "canCreatePSR"
	// PermApproveRequests allows approving or rejecting pending requests.
	PermApproveRequests Permission = "canApproveRequests"
)

// PermissionSet is the fixed capability matrix a role grants.
// Values are immutable; PermissionsFor returns them by value and no
// runtime mutation path exists.
type PermissionSet struct {
	CanAccessProcurementConsole bool `json:"canAccessProcurementConsole"`
	CanAccessRequestorConsole   bool `json:"canAccessRequestorConsole"`
	CanAccessDashboard          bool `json:"canAccessDashboard"`
	CanManageUsers              bool `json:"canManageUsers"`
	CanViewReports              bool `json:"canViewReports"`
	CanAccessFusion             bool `json:"canAccessFusion"`
	CanAccessSpotdraft          bool `json:"canAccessSpotdraft"`
	CanCreatePSR                bool `json:"canCreatePSR"`
	CanApproveRequests          bool `json:"canApproveRequests"`
}

// Has reports whether the set grants the named permission.
// Unknown permissions are never granted.
func (s PermissionSet) Has(p Permission) bool {
	switch p {
	case PermProcurementConsole:
		return s.CanAccessProcurementConsole
	case PermRequestorConsole:
		return s.CanAccessRequestorConsole
	case PermDashboard:
		return s.CanAccessDashboard
	case PermManageUsers:
		return s.CanManageUsers
	case PermViewReports:
		return s.CanViewReports
	case PermFusion:
		return s.CanAccessFusion
	case PermSpotdraft:
		return s.CanAccessSpotdraft
	case PermCreatePSR:
		return s.CanCreatePSR
	case PermApproveRequests:
		return s.CanApproveRequests
	}

	return false
}

// PermissionsFor returns the capability matrix of a role.
// The switch is exhaustive over the four defined roles; any other value
// yields the empty set, so an unknown role can do nothing.
func PermissionsFor(role models.Role) PermissionSet {
	switch role {
	case models.RoleAdmin:
		return PermissionSet{
			CanAccessProcurementConsole: true,
			CanAccessRequestorConsole:   true,
			CanAccessDashboard:          true,
			CanManageUsers:              true,
			CanViewReports:              true,
			CanAccessFusion:             true,
			CanAccessSpotdraft:          true,
			CanCreatePSR:                true,
			CanApproveRequests:          true,
		}
	case models.RoleProcurement:
		return PermissionSet{
			CanAccessProcurementConsole: true,
			CanAccessDashboard:          true,
			CanViewReports:              true,
			CanAccessFusion:             true,
			CanAccessSpotdraft:          true,
			CanCreatePSR:                true,
			CanApproveRequests:          true,
		}
	case models.RoleRequestor:
		return PermissionSet{
			CanAccessRequestorConsole: true,
			CanCreatePSR:              true,
		}
	case models.RoleGuest:
		return PermissionSet{}
	}

	return PermissionSet{}
}
