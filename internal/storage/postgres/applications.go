package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusboard/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("current status does not allow this action")
)

// ListByStudent returns a student's applications with their postings
// embedded. Logical ids are normalized before the snapshot leaves the
// storage layer; nothing downstream re-derives identity.
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]models.Application, error) {
	query := `
		SELECT
			a.id, a.student_id, a.job_id, a.status, a.applied_at,
			a.match_score, a.archived, a.invited, a.followed_up, a.avatar_path,
			p.id, p.title, p.company_id, p.company_name, p.location,
			p.work_type, p.remote_mode, p.pay_type, p.verification_tier,
			p.skills, p.logo_path, p.deadline
		FROM applications a
		JOIN job_postings p ON p.id = a.job_posting_id
		WHERE a.student_id = $1
		ORDER BY a.applied_at DESC
	`

	rows, err := s.sess.
		SelectBySql(query, studentID).
		Rows()

	if err != nil {
		s.logger.Error("failed to list applications",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application

	for rows.Next() {
		var (
			app        models.Application
			jobID      sql.NullString
			appliedAt  sql.NullTime
			avatarPath sql.NullString
			companyID  sql.NullString
			location   sql.NullString
			workType   sql.NullString
			remoteMode sql.NullString
			payType    sql.NullString
			tier       sql.NullString
			logoPath   sql.NullString
			deadline   sql.NullTime
		)

		err := rows.Scan(
			&app.ID, &app.StudentID, &jobID, &app.Status, &appliedAt,
			&app.MatchScore, &app.Archived, &app.Invited, &app.FollowedUp, &avatarPath,
			&app.Posting.ID, &app.Posting.Title, &companyID, &app.Posting.CompanyName, &location,
			&workType, &remoteMode, &payType, &tier,
			&app.Posting.Skills, &logoPath, &deadline,
		)
		if err != nil {
			s.logger.Error("failed to scan application row",
				zap.String("student_id", studentID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("scan application: %w", err)
		}

		app.JobID = jobID.String
		if appliedAt.Valid {
			app.AppliedAt = models.Timestamp{Time: appliedAt.Time}
		}
		if avatarPath.Valid {
			app.AvatarPath = &avatarPath.String
		}
		app.Posting.CompanyID = companyID.String
		app.Posting.Location = location.String
		app.Posting.WorkType = workType.String
		app.Posting.RemoteMode = remoteMode.String
		app.Posting.PayType = payType.String
		app.Posting.VerificationTier = tier.String
		if logoPath.Valid {
			app.Posting.LogoPath = &logoPath.String
		}
		if deadline.Valid {
			app.Posting.Deadline = models.Timestamp{Time: deadline.Time}
		}

		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("failed during rows iteration",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	models.Normalize(apps)

	return apps, nil
}

// Withdraw moves an application to withdrawn unless it already reached
// a terminal state.
func (s *Store) Withdraw(ctx context.Context, applicationID string) error {
	return s.transition(ctx, applicationID, models.StatusWithdrawn, []string{
		models.StatusNew,
		models.StatusShortlisted,
		models.StatusInterviewScheduled,
		models.StatusInterviewFinished,
		models.StatusWaitlisted,
		models.StatusOfferSent,
	})
}

// AcceptOffer moves offer_sent to hired.
func (s *Store) AcceptOffer(ctx context.Context, applicationID string) error {
	return s.transition(ctx, applicationID, models.StatusHired, []string{models.StatusOfferSent})
}

// RejectOffer moves offer_sent to offer_rejected.
func (s *Store) RejectOffer(ctx context.Context, applicationID string) error {
	return s.transition(ctx, applicationID, models.StatusOfferRejected, []string{models.StatusOfferSent})
}

func (s *Store) transition(ctx context.Context, applicationID, to string, from []string) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	result, err := tx.
		Update("applications").
		Set("status", to).
		Where("id = ?", applicationID).
		Where("status = ANY(?)", pq.Array(from)).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update application status",
			zap.String("application_id", applicationID),
			zap.String("status", to),
			zap.Error(err),
		)
		return fmt.Errorf("update status: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		// distinguish a missing row from a disallowed state; same
		// transaction, so the row cannot change in between
		var count int
		err := tx.
			Select("COUNT(*)").
			From("applications").
			Where("id = ?", applicationID).
			LoadOneContext(ctx, &count)
		if err != nil {
			return fmt.Errorf("check application: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}

	s.logger.Info("application status updated",
		zap.String("application_id", applicationID),
		zap.String("status", to),
	)

	return nil
}

// MarkFollowedUp flags an application as followed up.
func (s *Store) MarkFollowedUp(ctx context.Context, applicationID string) error {
	result, err := s.sess.
		Update("applications").
		Set("followed_up", true).
		Where("id = ?", applicationID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark application as followed up",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		return fmt.Errorf("mark followed up: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetArchived toggles the archived flag.
func (s *Store) SetArchived(ctx context.Context, applicationID string, archived bool) error {
	result, err := s.sess.
		Update("applications").
		Set("archived", archived).
		Where("id = ?", applicationID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set archived flag",
			zap.String("application_id", applicationID),
			zap.Bool("archived", archived),
			zap.Error(err),
		)
		return fmt.Errorf("set archived: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ActiveStudentIDs returns students with at least one live application,
// used by the background score refresh.
func (s *Store) ActiveStudentIDs(ctx context.Context) ([]string, error) {
	terminal := []string{
		models.StatusWithdrawn,
		models.StatusRejected,
		models.StatusOfferRejected,
	}

	query := `
		SELECT DISTINCT student_id
		FROM applications
		WHERE archived = FALSE AND NOT (status = ANY($1))
	`

	rows, err := s.sess.
		SelectBySql(query, pq.Array(terminal)).
		Rows()

	if err != nil {
		s.logger.Error("failed to get active student ids", zap.Error(err))
		return nil, fmt.Errorf("active student ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return ids, nil
}
