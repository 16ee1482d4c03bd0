package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gatherly-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Follow{},
		&models.Invite{},
		&models.Rsvp{},
		&models.Comment{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Composite indexes backing the hot queries

	// Propagation query: followers of a user holding an RSVP on an event
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_rsvps_event_user ON rsvps(event_id, user_id)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for rsvps: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for follows: %v\n", err)
	}

	// Event listing by host and date
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_host_date ON events(host_id, date)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events: %v\n", err)
	}

	// Invite inbox/outbox by status
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_invites_invitee_status ON invites(invitee_id, status)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for invites: %v\n", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// The unique pair/triple constraints come from the uniqueIndex tags on
	// the models. MySQL-only extras live here.

	// Prevent self-following at the storage boundary as well
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT ck_follows_no_self_follow CHECK (follower_id != followee_id)").Error; err != nil {
		// Ignore error if constraint already exists
		fmt.Printf("Warning: Could not add check constraint for follows: %v\n", err)
	}

	// Deleting an event takes its responses, invites and comments with it
	cascades := []struct{ name, stmt string }{
		{"rsvps", "ALTER TABLE rsvps ADD CONSTRAINT fk_rsvps_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE"},
		{"invites", "ALTER TABLE invites ADD CONSTRAINT fk_invites_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE"},
		{"comments", "ALTER TABLE comments ADD CONSTRAINT fk_comments_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE"},
	}
	for _, c := range cascades {
		if err := db.Exec(c.stmt).Error; err != nil {
			fmt.Printf("Warning: Could not add cascade constraint for %s: %v\n", c.name, err)
		}
	}

	return nil
}
