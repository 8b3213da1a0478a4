package appointments

import "time"

// Appointment states. The only transition is Pending -> Confirmed,
// performed by a doctor; cancellation removes the record instead of
// adding a state.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
)

// Appointment is a patient's request for a medical slot ("turno").
// Date and Time stay as the submitted strings (YYYY-MM-DD / HH:MM); the
// portal never does calendar arithmetic on them.
type Appointment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Date      string    `bson:"date" json:"fecha"`
	Time      string    `bson:"time" json:"hora"`
	Specialty string    `bson:"specialty" json:"especialidad"`
	Reason    string    `bson:"reason" json:"motivo"`
	Status    string    `bson:"status" json:"estado"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PendingEntry is a pending appointment joined with the requesting
// patient's username, for the doctor panel.
type PendingEntry struct {
	Appointment
	Username string `json:"paciente"`
}
