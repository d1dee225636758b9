package models

import (
	"time"

	"github.com/google/uuid"
)

// Role categorizes an authenticated principal. The mapping from an
// authentication token to a role is owned by the identity provider;
// this layer only consumes the result.
type Role string

const (
	RoleJudge        Role = "judge"
	RolePractitioner Role = "practitioner"
	RolePublic       Role = "public"
)

// Principal is the acting identity behind every coordinator operation.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// IsJudge reports whether the principal belongs to the judiciary category.
func (p Principal) IsJudge() bool {
	return p.Role == RoleJudge
}

// Profile is the persisted record behind a Principal.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Principal projects the profile into the identity consumed by the
// coordinator and the HTTP layer.
func (p *Profile) Principal() Principal {
	return Principal{ID: p.ID, Name: p.FullName, Role: p.Role}
}
