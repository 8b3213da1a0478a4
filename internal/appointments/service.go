package appointments

import (
	"context"
	"errors"
	"strings"

	"github.com/medifed/portal/internal/models"
)

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrForbidden  = errors.New("operation not allowed for this caller")
	ErrValidation = errors.New("missing appointment field")
)

// UserDirectory resolves account identifiers to accounts; satisfied by
// the users service. Needed to join pending appointments with the
// requesting patient for the doctor panel.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Service implements the appointment ledger on top of a Repository.
type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// Reserve inserts a new Pending appointment for the owner. Overlapping
// date/time slots for the same specialty are not detected.
func (s *Service) Reserve(ctx context.Context, ownerID, date, timeStr, specialty, reason string) (*Appointment, error) {
	if strings.TrimSpace(date) == "" || strings.TrimSpace(timeStr) == "" || strings.TrimSpace(specialty) == "" {
		return nil, ErrValidation
	}
	a := &Appointment{
		UserID:    ownerID,
		Date:      strings.TrimSpace(date),
		Time:      strings.TrimSpace(timeStr),
		Specialty: strings.TrimSpace(specialty),
		Reason:    strings.TrimSpace(reason),
		Status:    StatusPending,
	}
	return s.repo.Create(ctx, a)
}

// ListUpcoming returns the owner's appointments ordered by date
// ascending, truncated to limit.
func (s *Service) ListUpcoming(ctx context.Context, ownerID string, limit int) ([]*Appointment, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit)
}

// ListPendingAll returns every Pending appointment across owners, date
// ascending, joined with the requester's username. Doctor panel view.
func (s *Service) ListPendingAll(ctx context.Context) ([]*PendingEntry, error) {
	pending, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	out := make([]*PendingEntry, 0, len(pending))
	for _, a := range pending {
		e := &PendingEntry{Appointment: *a}
		if u, err := s.users.GetByID(ctx, a.UserID); err == nil && u != nil {
			e.Username = u.Username
		}
		out = append(out, e)
	}
	return out, nil
}

// Confirm transitions an appointment to Confirmed. Only doctors may
// confirm; confirming an already-Confirmed appointment is accepted and
// leaves it Confirmed.
func (s *Service) Confirm(ctx context.Context, id, callerRole string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if callerRole != models.RoleDoctor {
		return nil, ErrForbidden
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed); err != nil {
		return nil, err
	}
	a.Status = StatusConfirmed
	return a, nil
}

// Cancel removes an appointment. Only the owning patient may cancel.
func (s *Service) Cancel(ctx context.Context, id, callerID string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNotFound
	}
	if a.UserID != callerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
