package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marketpulse/backend/internal/domain/models"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/utils"
)

// DeliveryRepository handles database operations for the delivery log
type DeliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Record inserts a delivery attempt and returns its generated ID
func (r *DeliveryRepository) Record(ctx context.Context, delivery *models.Delivery) (string, error) {
	id := utils.GenerateID()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, chat_id, body, status, error, created_date)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, constants.TableDelivery)

	var errMsg sql.NullString
	if delivery.Error != nil {
		errMsg = sql.NullString{String: *delivery.Error, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, id, delivery.Kind, delivery.ChatID,
		delivery.Body, delivery.Status, errMsg)
	if err != nil {
		return "", fmt.Errorf("failed to record delivery: %w", err)
	}

	delivery.ID = id
	return id, nil
}

// GetRecent returns the most recent deliveries, newest first
func (r *DeliveryRepository) GetRecent(ctx context.Context, limit int) ([]models.Delivery, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, chat_id, body, status, error, created_date
		FROM %s
		ORDER BY created_date DESC
		LIMIT ?
	`, constants.TableDelivery)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		var d models.Delivery
		var errMsg sql.NullString
		if err := rows.Scan(&d.ID, &d.Kind, &d.ChatID, &d.Body, &d.Status, &errMsg, &d.CreatedDate); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		if errMsg.Valid {
			d.Error = &errMsg.String
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, rows.Err()
}

// CountByStatus returns delivery counts grouped by status, used by /status
// and the health endpoint
func (r *DeliveryRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT status, COUNT(*)
		FROM %s
		GROUP BY status
	`, constants.TableDelivery)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan delivery count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// GetLastByKind returns the newest delivery of the given kind, or nil when
// none exists yet
func (r *DeliveryRepository) GetLastByKind(ctx context.Context, kind string) (*models.Delivery, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, chat_id, body, status, error, created_date
		FROM %s
		WHERE kind = ?
		ORDER BY created_date DESC
		LIMIT 1
	`, constants.TableDelivery)

	var d models.Delivery
	var errMsg sql.NullString
	err := r.db.QueryRowContext(ctx, query, kind).
		Scan(&d.ID, &d.Kind, &d.ChatID, &d.Body, &d.Status, &errMsg, &d.CreatedDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last %s delivery: %w", kind, err)
	}
	if errMsg.Valid {
		d.Error = &errMsg.String
	}

	return &d, nil
}
