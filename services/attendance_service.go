package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/repositories"
)

// DefaultCountWindow is how far back CountByDay looks when the caller
// gives no window.
const DefaultCountWindow = 30 * 24 * time.Hour

// PropagationFailure records one follower whose mirrored Rsvp could not be
// written. These are reported, never raised: a follower failure must not
// undo the initiating user's own response.
type PropagationFailure struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// RespondResult is the outcome of a respond call: the caller's own row,
// whether it was newly created, and how the fan-out went.
type RespondResult struct {
	Rsvp       *models.Rsvp         `json:"rsvp"`
	Created    bool                 `json:"created"`
	Propagated int                  `json:"propagated"`
	Failures   []PropagationFailure `json:"propagation_failures,omitempty"`
}

// AttendanceService is the propagation core. Every path that changes a
// user's response to an event goes through Respond, so the follower
// mirroring behaves identically whether the change came from a direct
// RSVP, an update, or an invite reply.
type AttendanceService struct {
	db   *gorm.DB
	repo *repositories.AttendanceRepository
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{
		db:   db,
		repo: repositories.NewAttendanceRepository(db),
	}
}

// Respond upserts the acting user's Rsvp on the event and then mirrors the
// new status onto every follower of the acting user who already holds an
// Rsvp on the same event. The initiating write is committed before any
// fan-out begins; per-follower writes run concurrently and their failures
// are aggregated into the result.
func (s *AttendanceService) Respond(userID, eventID string, status models.RsvpStatus) (*RespondResult, error) {
	if !models.ValidRsvpStatus(string(status)) {
		return nil, ValidationError(fmt.Sprintf("invalid rsvp status %q", status))
	}

	var event models.Event
	if err := s.db.Select("id").First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Event does not exist")
		}
		return nil, err
	}

	// Only to report created-vs-updated; the upsert itself never relies
	// on this check.
	created := false
	if _, err := s.repo.FindByUserAndEvent(userID, eventID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		created = true
	}

	rsvp, err := s.repo.Upsert(userID, eventID, status)
	if err != nil {
		return nil, err
	}

	result := &RespondResult{Rsvp: rsvp, Created: created}
	s.propagate(userID, eventID, status, result)
	return result, nil
}

// propagate fans the status out to the acting user's already-engaged
// followers. The follower set may change between enumeration and write;
// that race is accepted, each write is independently atomic.
func (s *AttendanceService) propagate(userID, eventID string, status models.RsvpStatus, result *RespondResult) {
	followerRsvps, err := s.repo.FollowersWithRsvp(userID, eventID)
	if err != nil {
		fmt.Printf("Failed to enumerate followers for propagation (user=%s event=%s): %v\n", userID, eventID, err)
		result.Failures = append(result.Failures, PropagationFailure{Reason: "follower enumeration failed"})
		return
	}

	var (
		wg    sync.WaitGroup
		mutex sync.Mutex
	)
	for _, followerRsvp := range followerRsvps {
		if followerRsvp.UserID == userID {
			continue
		}

		wg.Add(1)
		go func(followerID string) {
			defer wg.Done()

			_, err := s.repo.Upsert(followerID, eventID, status)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				fmt.Printf("Failed to mirror rsvp to follower %s on event %s: %v\n", followerID, eventID, err)
				result.Failures = append(result.Failures, PropagationFailure{UserID: followerID, Reason: err.Error()})
				return
			}
			result.Propagated++
		}(followerRsvp.UserID)
	}
	wg.Wait()
}

// UpsertWithoutPropagation writes the user's own Rsvp and stops there.
// Used when invite replies are configured not to fan out.
func (s *AttendanceService) UpsertWithoutPropagation(userID, eventID string, status models.RsvpStatus) error {
	if !models.ValidRsvpStatus(string(status)) {
		return ValidationError(fmt.Sprintf("invalid rsvp status %q", status))
	}

	var event models.Event
	if err := s.db.Select("id").First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("Event does not exist")
		}
		return err
	}

	_, err := s.repo.Upsert(userID, eventID, status)
	return err
}

// Remove deletes the acting user's own Rsvp on the event. Propagation is
// one directional and only on create/update: followers keep their rows.
func (s *AttendanceService) Remove(userID, eventID string) error {
	rsvp, err := s.repo.FindByUserAndEvent(userID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("RSVP not found")
		}
		return err
	}
	return s.repo.Delete(rsvp)
}

// RemoveByID is the deprecated id-keyed variant of Remove.
func (s *AttendanceService) RemoveByID(id uint, callerID string) error {
	rsvp, err := s.Get(id, callerID)
	if err != nil {
		return err
	}
	return s.repo.Delete(rsvp)
}

// Get returns the Rsvp only to its owner.
func (s *AttendanceService) Get(id uint, callerID string) (*models.Rsvp, error) {
	rsvp, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("RSVP not found")
		}
		return nil, err
	}
	if rsvp.UserID != callerID {
		return nil, ForbiddenError("Looking at someone else's RSVP")
	}
	return rsvp, nil
}

// List returns the user's Rsvps with an optional status filter.
func (s *AttendanceService) List(userID string, statusFilter string) ([]models.Rsvp, error) {
	if statusFilter != "" && !models.ValidRsvpStatus(statusFilter) {
		return nil, ValidationError("Invalid status in request")
	}
	return s.repo.ListByUser(userID, statusFilter)
}

// CountByDay tallies the caller's Rsvp creations per calendar day. Zero
// times default to a window of the last 30 days ending now.
func (s *AttendanceService) CountByDay(userID string, since, until time.Time) ([]repositories.DayCount, error) {
	if until.IsZero() {
		until = time.Now()
	}
	if since.IsZero() {
		since = until.Add(-DefaultCountWindow)
	}
	if since.After(until) {
		return nil, ValidationError("since must not be after until")
	}
	return s.repo.CountByDay(userID, since, until)
}
