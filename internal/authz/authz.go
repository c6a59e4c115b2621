// Package authz holds the role-hierarchy and jurisdiction predicates used to
// gate resource access.
package authz

import (
	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

// CanAccess is the generic ownership check for a protected resource.
// Super admins always pass; district admins pass on district match; sector
// admins on sector match; citizens only when they own the resource.
func CanAccess(actor *models.User, loc models.Location, ownerID uuid.UUID) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleDistrictAdmin:
		return actor.Location.District == loc.District
	case models.RoleSectorAdmin:
		return actor.Location.Sector == loc.Sector
	case models.RoleCitizen:
		return actor.ID == ownerID
	default:
		return false
	}
}

// InJurisdiction reports whether an admin's assignment covers loc. Sector
// admins need sector and district to match; district admins need the
// district only. Citizens and unknown roles never pass.
func InJurisdiction(actor *models.User, loc models.Location) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleDistrictAdmin:
		return actor.Location.District == loc.District
	case models.RoleSectorAdmin:
		return actor.Location.District == loc.District && actor.Location.Sector == loc.Sector
	default:
		return false
	}
}

// CanJoinGroup applies the membership location rule: district admins match on
// province+district only, everyone else needs the full triple.
func CanJoinGroup(actor *models.User, groupLoc models.Location) bool {
	if actor.Role == models.RoleDistrictAdmin {
		return actor.Location.Province == groupLoc.Province &&
			actor.Location.District == groupLoc.District
	}
	return actor.Location.Province == groupLoc.Province &&
		actor.Location.District == groupLoc.District &&
		actor.Location.Sector == groupLoc.Sector
}

// CanAssignRole reports whether actor may change target's role/location:
// only an admin with strictly higher rank than both the target's current
// role and the requested role.
func CanAssignRole(actor *models.User, current, requested models.Role) bool {
	return actor.Role.Rank() > current.Rank() && actor.Role.Rank() > requested.Rank()
}
