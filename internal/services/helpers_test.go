package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

var (
	remera     = models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"}
	kimihurura = models.Location{Province: "Kigali", District: "Gasabo", Sector: "Kimihurura"}
	niboye     = models.Location{Province: "Kigali", District: "Kicukiro", Sector: "Niboye"}
)

func testUser(role models.Role, loc models.Location) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Name:      "Test " + string(role),
		Email:     string(role) + "-" + uuid.NewString()[:8] + "@example.rw",
		Role:      role,
		Location:  loc,
		CreatedAt: time.Now(),
	}
}
