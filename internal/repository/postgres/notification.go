package postgres

import (
	"context"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type notificationRepository struct {
	db repository.DBTX
}

func NewNotificationRepository(db repository.DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "residentID", note.ResidentID, "title", note.Title)

	query := `
		INSERT INTO notifications (resident_id, title, message, link_to, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		note.ResidentID, note.Title, note.Message, note.LinkTo, time.Now(),
	).Scan(&note.ID, &note.CreatedAt)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "residentID", note.ResidentID)
		return err
	}

	logger.ExitMethod("notificationRepository.Create", "notificationID", note.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, residentID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	logger.EnterMethod("notificationRepository.List", "residentID", residentID)

	var total int32
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE resident_id = $1`, residentID,
	).Scan(&total); err != nil {
		logger.ExitMethodWithError("notificationRepository.List", err, "residentID", residentID)
		return nil, 0, err
	}

	query := `
		SELECT id, resident_id, title, message, COALESCE(link_to, ''), is_read, created_at
		FROM notifications
		WHERE resident_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, residentID, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.List", err, "residentID", residentID)
		return nil, 0, err
	}
	defer rows.Close()

	notes := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.ResidentID, &n.Title, &n.Message, &n.LinkTo, &n.IsRead, &n.CreatedAt); err != nil {
			logger.ExitMethodWithError("notificationRepository.List", err, "residentID", residentID)
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("notificationRepository.List", err, "residentID", residentID)
		return nil, 0, err
	}

	logger.ExitMethod("notificationRepository.List", "residentID", residentID, "count", len(notes))
	return notes, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, residentID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND resident_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, residentID)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.MarkAsRead", err, "notificationID", id)
	}
	return err
}
