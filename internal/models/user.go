package models

import "time"

// Roles a portal account can hold. Every self-registered or federated
// account starts as a patient; doctor accounts are only produced by the
// seeding path.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User is a portal account with local credentials. Accounts provisioned
// through Google sign-in carry a random password hash that is never used
// for login.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Username     string    `bson:"username" json:"username"` // email-shaped, unique
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
