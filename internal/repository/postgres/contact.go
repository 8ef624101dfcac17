package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/repository"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (
			id, patient_id, name, relation, phone, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	contact.ID = uuid.New()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.PatientID,
		contact.Name,
		contact.Relation,
		contact.Phone,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error) {
	query := `
		SELECT id, patient_id, name, relation, phone, created_at, updated_at
		FROM emergency_contacts
		WHERE id = $1
	`
	var contact model.EmergencyContact
	err := r.db.GetContext(ctx, &contact, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("contact", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		UPDATE emergency_contacts
		SET name = $1, relation = $2, phone = $3, updated_at = $4
		WHERE id = $5
	`
	contact.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		contact.Name,
		contact.Relation,
		contact.Phone,
		contact.UpdatedAt,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("contact", nil)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("contact", nil)
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context, patientID int64) ([]*model.EmergencyContact, error) {
	query := `
		SELECT id, patient_id, name, relation, phone, created_at, updated_at
		FROM emergency_contacts
		WHERE patient_id = $1
		ORDER BY created_at
	`
	var contacts []*model.EmergencyContact
	if err := r.db.SelectContext(ctx, &contacts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
