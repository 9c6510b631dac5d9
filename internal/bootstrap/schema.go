package bootstrap

import (
	"fmt"
	"log"

	"github.com/marketpulse/backend/internal/infrastructure/database"
	"github.com/marketpulse/backend/pkg/constants"
)

// InitializeSchema creates the storage tables if they do not exist.
// The schema is fixed: a delivery log and a calendar event cache.
func InitializeSchema(db *database.Connection) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          VARCHAR(36)  NOT NULL,
			kind        VARCHAR(32)  NOT NULL,
			chat_id     BIGINT       NOT NULL,
			body        TEXT         NOT NULL,
			status      VARCHAR(16)  NOT NULL,
			error       TEXT         NULL,
			created_date DATETIME    NOT NULL,
			PRIMARY KEY (id),
			INDEX idx_delivery_created (created_date),
			INDEX idx_delivery_kind (kind)
		) CHARACTER SET utf8mb4`, constants.TableDelivery),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			title       VARCHAR(255) NOT NULL,
			country     VARCHAR(8)   NOT NULL,
			event_date  DATETIME     NOT NULL,
			impact      VARCHAR(16)  NOT NULL,
			forecast    VARCHAR(64)  NULL,
			previous    VARCHAR(64)  NULL,
			PRIMARY KEY (title, event_date),
			INDEX idx_event_date (event_date)
		) CHARACTER SET utf8mb4`, constants.TableCalendarEvent),
	}

	for _, stmt := range statements {
		if _, err := db.DB().Exec(stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}

	log.Println("📦 Storage schema ready")
	return nil
}
