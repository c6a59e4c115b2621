package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

var (
	remera = models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"}
	kimiro = models.Location{Province: "Kigali", District: "Gasabo", Sector: "Kimironko"}
	huye   = models.Location{Province: "Southern", District: "Huye", Sector: "Ngoma"}
)

func user(role models.Role, loc models.Location) *models.User {
	return &models.User{ID: uuid.New(), Role: role, Location: loc}
}

func TestCanAccess(t *testing.T) {
	owner := uuid.New()

	cases := []struct {
		name  string
		actor *models.User
		owned bool
		allow bool
	}{
		{name: "super admin anywhere", actor: user(models.RoleSuperAdmin, huye), allow: true},
		{name: "district admin same district", actor: user(models.RoleDistrictAdmin, kimiro), allow: true},
		{name: "district admin other district", actor: user(models.RoleDistrictAdmin, huye), allow: false},
		{name: "sector admin same sector", actor: user(models.RoleSectorAdmin, remera), allow: true},
		{name: "sector admin other sector", actor: user(models.RoleSectorAdmin, kimiro), allow: false},
		{name: "citizen owner", actor: user(models.RoleCitizen, remera), owned: true, allow: true},
		{name: "citizen non-owner", actor: user(models.RoleCitizen, remera), allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resourceOwner := owner
			if tc.owned {
				resourceOwner = tc.actor.ID
			}
			if got := CanAccess(tc.actor, remera, resourceOwner); got != tc.allow {
				t.Fatalf("CanAccess() = %v, want %v", got, tc.allow)
			}
		})
	}
}

func TestInJurisdiction(t *testing.T) {
	cases := []struct {
		name  string
		actor *models.User
		loc   models.Location
		allow bool
	}{
		{name: "sector admin full match", actor: user(models.RoleSectorAdmin, remera), loc: remera, allow: true},
		{name: "sector admin sector mismatch", actor: user(models.RoleSectorAdmin, kimiro), loc: remera, allow: false},
		{name: "district admin district match", actor: user(models.RoleDistrictAdmin, kimiro), loc: remera, allow: true},
		{name: "district admin district mismatch", actor: user(models.RoleDistrictAdmin, huye), loc: remera, allow: false},
		{name: "citizen never", actor: user(models.RoleCitizen, remera), loc: remera, allow: false},
		{name: "super admin always", actor: user(models.RoleSuperAdmin, huye), loc: remera, allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InJurisdiction(tc.actor, tc.loc); got != tc.allow {
				t.Fatalf("InJurisdiction() = %v, want %v", got, tc.allow)
			}
		})
	}
}

func TestCanJoinGroup(t *testing.T) {
	cases := []struct {
		name  string
		actor *models.User
		loc   models.Location
		allow bool
	}{
		{name: "citizen full match", actor: user(models.RoleCitizen, remera), loc: remera, allow: true},
		{name: "citizen sector mismatch", actor: user(models.RoleCitizen, kimiro), loc: remera, allow: false},
		{name: "district admin sector mismatch ok", actor: user(models.RoleDistrictAdmin, kimiro), loc: remera, allow: true},
		{name: "district admin district mismatch", actor: user(models.RoleDistrictAdmin, huye), loc: remera, allow: false},
		{name: "sector admin full match", actor: user(models.RoleSectorAdmin, remera), loc: remera, allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanJoinGroup(tc.actor, tc.loc); got != tc.allow {
				t.Fatalf("CanJoinGroup() = %v, want %v", got, tc.allow)
			}
		})
	}
}

func TestCanAssignRole(t *testing.T) {
	super := user(models.RoleSuperAdmin, huye)
	district := user(models.RoleDistrictAdmin, kimiro)

	if !CanAssignRole(super, models.RoleCitizen, models.RoleDistrictAdmin) {
		t.Fatal("super admin should promote a citizen to district admin")
	}
	if CanAssignRole(district, models.RoleCitizen, models.RoleDistrictAdmin) {
		t.Fatal("district admin must not promote to their own rank")
	}
	if CanAssignRole(district, models.RoleDistrictAdmin, models.RoleCitizen) {
		t.Fatal("district admin must not demote a peer")
	}
	if !CanAssignRole(district, models.RoleCitizen, models.RoleSectorAdmin) {
		t.Fatal("district admin should promote a citizen to sector admin")
	}
}
