package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/akulbansal1/carelink/internal/model"
)

// ContactRepository persists emergency contacts, the one collection
// with no upstream endpoint.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.EmergencyContact) error
	Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error)
	Update(ctx context.Context, contact *model.EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID int64) ([]*model.EmergencyContact, error)
}
