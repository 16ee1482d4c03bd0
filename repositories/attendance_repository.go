package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gatherly-api/models"
)

// AttendanceRepository owns storage access for Rsvp rows. The uniqueness of
// the (user_id, event_id) pair is enforced by the database; Upsert leans on
// it instead of a find-then-create sequence, so two concurrent responses
// for the same pair can never produce two rows.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert creates the (userID, eventID) Rsvp with the given status, or
// overwrites the status of the existing row. Returns the row as stored.
func (r *AttendanceRepository) Upsert(userID, eventID string, status models.RsvpStatus) (*models.Rsvp, error) {
	rsvp := models.Rsvp{
		UserID:  userID,
		EventID: eventID,
		Status:  status,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}),
	}).Create(&rsvp).Error
	if err != nil {
		return nil, err
	}

	// On the conflict path gorm does not backfill the primary key, so
	// load the row again either way.
	return r.FindByUserAndEvent(userID, eventID)
}

// FindByUserAndEvent returns the pair's row or gorm.ErrRecordNotFound.
func (r *AttendanceRepository) FindByUserAndEvent(userID, eventID string) (*models.Rsvp, error) {
	var rsvp models.Rsvp
	if err := r.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&rsvp).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *AttendanceRepository) FindByID(id uint) (*models.Rsvp, error) {
	var rsvp models.Rsvp
	if err := r.db.First(&rsvp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *AttendanceRepository) Delete(rsvp *models.Rsvp) error {
	return r.db.Delete(rsvp).Error
}

// ListByUser returns the user's Rsvps, optionally filtered by status.
func (r *AttendanceRepository) ListByUser(userID string, status string) ([]models.Rsvp, error) {
	var rsvps []models.Rsvp
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

// FollowersWithRsvp returns the Rsvp rows on eventID held by users who
// follow followeeID. This is the fan-out set of the propagation algorithm:
// followers with no row on the event are deliberately absent, so they are
// never auto-enrolled by someone else's response.
func (r *AttendanceRepository) FollowersWithRsvp(followeeID, eventID string) ([]models.Rsvp, error) {
	var rsvps []models.Rsvp
	err := r.db.
		Joins("JOIN follows ON follows.follower_id = rsvps.user_id").
		Where("follows.followee_id = ? AND rsvps.event_id = ?", followeeID, eventID).
		Find(&rsvps).Error
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

// DayCount is one calendar day's Rsvp creation tally.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CountByDay groups the user's Rsvp creation timestamps by calendar day in
// the inclusive [since, until] window. Days without rows are simply not in
// the result.
func (r *AttendanceRepository) CountByDay(userID string, since, until time.Time) ([]DayCount, error) {
	var counts []DayCount
	err := r.db.Model(&models.Rsvp{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, since, until).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
