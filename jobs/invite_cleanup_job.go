package jobs

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"gatherly-api/models"
)

// DefaultCleanupInterval is how often the invite cleanup runs.
const DefaultCleanupInterval = time.Hour

// InviteCleanupJob periodically declines pending invites whose event date
// has passed. A pending invite to a past event can never be meaningfully
// accepted anymore.
type InviteCleanupJob struct {
	db     *gorm.DB
	ticker *time.Ticker
	done   chan bool
}

// NewInviteCleanupJob creates a new invite cleanup job
func NewInviteCleanupJob(db *gorm.DB, interval time.Duration) *InviteCleanupJob {
	return &InviteCleanupJob{
		db:     db,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the cleanup job
func (j *InviteCleanupJob) Start() {
	fmt.Println("Invite cleanup job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				fmt.Println("Invite cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *InviteCleanupJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

// cleanup performs the actual cleanup
func (j *InviteCleanupJob) cleanup() {
	res := j.db.Model(&models.Invite{}).
		Where("status = ?", models.InviteStatusPending).
		Where("event_id IN (?)", j.db.Model(&models.Event{}).Select("id").Where("date < ?", time.Now())).
		Update("status", models.InviteStatusDeclined)
	if res.Error != nil {
		fmt.Printf("Error during invite cleanup: %v\n", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		fmt.Printf("Invite cleanup declined %d expired invites\n", res.RowsAffected)
	}
}
