package sessions

import "time"

// Session is the server-side record behind a signed portal cookie. The
// cookie carries the session ID; the record existing is what makes the
// cookie valid, so logout revokes immediately.
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	Role      string    `bson:"role" json:"role"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
