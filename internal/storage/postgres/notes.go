package postgres

import (
	"context"
	"fmt"

	"campusboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddNote appends a free-text note to an application.
func (s *Store) AddNote(ctx context.Context, applicationID, body string) (*models.Note, error) {
	note := &models.Note{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		Body:          body,
	}

	query := `
		INSERT INTO application_notes (id, application_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	err := s.sess.
		SelectBySql(query, note.ID, note.ApplicationID, note.Body).
		LoadOneContext(ctx, &note.CreatedAt)

	if err != nil {
		s.logger.Error("failed to add note",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("add note: %w", err)
	}

	s.logger.Info("note added",
		zap.String("application_id", applicationID),
		zap.String("note_id", note.ID),
	)

	return note, nil
}

// ListNotes returns an application's notes, oldest first.
func (s *Store) ListNotes(ctx context.Context, applicationID string) ([]models.Note, error) {
	var notes []models.Note

	_, err := s.sess.
		Select("*").
		From("application_notes").
		Where("application_id = ?", applicationID).
		OrderBy("created_at").
		LoadContext(ctx, &notes)

	if err != nil {
		s.logger.Error("failed to list notes",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}
