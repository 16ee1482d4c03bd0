package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gatherly-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection keeps the in-memory database alive and serializes
	// the concurrent writes from propagation fan-out.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Follow{},
		&models.Invite{},
		&models.Rsvp{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Privacy:  models.UserPrivacyPublic,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createEvent(t *testing.T, db *gorm.DB, host *models.User) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:     uuid.New().String(),
		Title:  "Test Event",
		Date:   time.Now().Add(24 * time.Hour),
		HostID: host.ID,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}

func createFollow(t *testing.T, db *gorm.DB, follower, followee *models.User) {
	t.Helper()

	follow := &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		Status:     models.FollowStatusAccepted,
	}
	if err := db.Create(follow).Error; err != nil {
		t.Fatalf("Failed to create follow: %v", err)
	}
}

func rsvpStatus(t *testing.T, db *gorm.DB, userID, eventID string) models.RsvpStatus {
	t.Helper()

	var rsvp models.Rsvp
	err := db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&rsvp).Error
	if err != nil {
		t.Fatalf("Failed to load rsvp for user %s: %v", userID, err)
	}
	return rsvp.Status
}

func rsvpCount(t *testing.T, db *gorm.DB, userID, eventID string) int64 {
	t.Helper()

	var count int64
	err := db.Model(&models.Rsvp{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("Failed to count rsvps: %v", err)
	}
	return count
}

func TestRespondCreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	user := createUser(t, db, "guest")
	event := createEvent(t, db, host)

	result, err := service.Respond(user.ID, event.ID, models.RsvpStatusAccepted)
	if err != nil {
		t.Fatalf("First respond failed: %v", err)
	}
	if !result.Created {
		t.Error("Expected first respond to report a created rsvp")
	}
	if result.Rsvp.Status != models.RsvpStatusAccepted {
		t.Errorf("Expected status accepted, got %s", result.Rsvp.Status)
	}

	result, err = service.Respond(user.ID, event.ID, models.RsvpStatusDeclined)
	if err != nil {
		t.Fatalf("Second respond failed: %v", err)
	}
	if result.Created {
		t.Error("Expected second respond to update in place, not create")
	}
	if got := rsvpStatus(t, db, user.ID, event.ID); got != models.RsvpStatusDeclined {
		t.Errorf("Expected stored status declined, got %s", got)
	}
	if got := rsvpCount(t, db, user.ID, event.ID); got != 1 {
		t.Errorf("Expected exactly one rsvp row, got %d", got)
	}
}

func TestRespondIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	user := createUser(t, db, "guest")
	event := createEvent(t, db, host)

	for i := 0; i < 3; i++ {
		if _, err := service.Respond(user.ID, event.ID, models.RsvpStatusAccepted); err != nil {
			t.Fatalf("Respond %d failed: %v", i, err)
		}
	}

	if got := rsvpCount(t, db, user.ID, event.ID); got != 1 {
		t.Errorf("Expected one rsvp after repeated responds, got %d", got)
	}
	if got := rsvpStatus(t, db, user.ID, event.ID); got != models.RsvpStatusAccepted {
		t.Errorf("Expected status accepted, got %s", got)
	}
}

func TestRespondRejectsUnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	user := createUser(t, db, "guest")

	_, err := service.Respond(user.ID, uuid.New().String(), models.RsvpStatusAccepted)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Kind != KindNotFound {
		t.Fatalf("Expected not-found error, got %v", err)
	}
}

func TestRespondRejectsInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	event := createEvent(t, db, host)

	_, err := service.Respond(host.ID, event.ID, models.RsvpStatus("maybe"))
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Kind != KindValidation {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestRespondPropagatesToEngagedFollowersOnly(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	dave := createUser(t, db, "dave")
	event := createEvent(t, db, host)
	other := createEvent(t, db, host)

	// bob follows alice and already responded to the event.
	createFollow(t, db, bob, alice)
	if _, err := service.Respond(bob.ID, event.ID, models.RsvpStatusAccepted); err != nil {
		t.Fatalf("Bob's respond failed: %v", err)
	}
	// carol follows alice but never responded to the event.
	createFollow(t, db, carol, alice)
	// dave follows alice but responded to a different event.
	createFollow(t, db, dave, alice)
	if _, err := service.Respond(dave.ID, other.ID, models.RsvpStatusAccepted); err != nil {
		t.Fatalf("Dave's respond failed: %v", err)
	}

	result, err := service.Respond(alice.ID, event.ID, models.RsvpStatusDeclined)
	if err != nil {
		t.Fatalf("Alice's respond failed: %v", err)
	}
	if result.Propagated != 1 {
		t.Errorf("Expected 1 propagated update, got %d", result.Propagated)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Expected no propagation failures, got %v", result.Failures)
	}

	if got := rsvpStatus(t, db, bob.ID, event.ID); got != models.RsvpStatusDeclined {
		t.Errorf("Expected bob's rsvp mirrored to declined, got %s", got)
	}
	if got := rsvpCount(t, db, carol.ID, event.ID); got != 0 {
		t.Error("Expected carol to stay without an rsvp")
	}
	if got := rsvpStatus(t, db, dave.ID, other.ID); got != models.RsvpStatusAccepted {
		t.Errorf("Expected dave's rsvp on the other event untouched, got %s", got)
	}
}

func TestRespondDoesNotPropagateToFollowees(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	event := createEvent(t, db, host)

	// alice follows bob, not the other way round. Alice's response must
	// not reach bob.
	createFollow(t, db, alice, bob)
	if _, err := service.Respond(bob.ID, event.ID, models.RsvpStatusAccepted); err != nil {
		t.Fatalf("Bob's respond failed: %v", err)
	}

	result, err := service.Respond(alice.ID, event.ID, models.RsvpStatusDeclined)
	if err != nil {
		t.Fatalf("Alice's respond failed: %v", err)
	}
	if result.Propagated != 0 {
		t.Errorf("Expected no propagation, got %d", result.Propagated)
	}
	if got := rsvpStatus(t, db, bob.ID, event.ID); got != models.RsvpStatusAccepted {
		t.Errorf("Expected bob's rsvp untouched, got %s", got)
	}
}

func TestRemoveDoesNotCascade(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	event := createEvent(t, db, host)

	createFollow(t, db, bob, alice)
	if _, err := service.Respond(bob.ID, event.ID, models.RsvpStatusAccepted); err != nil {
		t.Fatalf("Bob's respond failed: %v", err)
	}
	if _, err := service.Respond(alice.ID, event.ID, models.RsvpStatusAccepted); err != nil {
		t.Fatalf("Alice's respond failed: %v", err)
	}

	if err := service.Remove(alice.ID, event.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if got := rsvpCount(t, db, alice.ID, event.ID); got != 0 {
		t.Error("Expected alice's rsvp deleted")
	}
	if got := rsvpCount(t, db, bob.ID, event.ID); got != 1 {
		t.Error("Expected bob's mirrored rsvp to survive the removal")
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	event := createEvent(t, db, host)

	result, err := service.Respond(alice.ID, event.ID, models.RsvpStatusAccepted)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if _, err := service.Get(result.Rsvp.ID, alice.ID); err != nil {
		t.Errorf("Expected owner to read their rsvp, got %v", err)
	}

	_, err = service.Get(result.Rsvp.ID, bob.ID)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Kind != KindForbidden {
		t.Fatalf("Expected forbidden error for non-owner, got %v", err)
	}
}

func TestListRejectsInvalidStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	user := createUser(t, db, "guest")

	_, err := service.List(user.ID, "maybe")
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Kind != KindValidation {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCountByDay(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	host := createUser(t, db, "host")
	user := createUser(t, db, "guest")

	now := time.Now()
	backdate := func(createdAt time.Time) {
		event := createEvent(t, db, host)
		if _, err := service.Respond(user.ID, event.ID, models.RsvpStatusAccepted); err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		err := db.Model(&models.Rsvp{}).
			Where("user_id = ? AND event_id = ?", user.ID, event.ID).
			Update("created_at", createdAt).Error
		if err != nil {
			t.Fatalf("Failed to backdate rsvp: %v", err)
		}
	}

	backdate(now.Add(-48 * time.Hour))
	backdate(now.Add(-48 * time.Hour))
	backdate(now.Add(-24 * time.Hour))
	backdate(now.Add(-90 * 24 * time.Hour)) // outside the window

	counts, err := service.CountByDay(user.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("CountByDay failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 buckets inside the default window, got %d: %v", len(counts), counts)
	}

	var total int64
	for _, bucket := range counts {
		total += bucket.Count
	}
	if total != 3 {
		t.Errorf("Expected 3 rsvps counted, got %d", total)
	}
}

func TestCountByDayRejectsInvertedWindow(t *testing.T) {
	db := setupTestDB(t)
	service := NewAttendanceService(db)

	user := createUser(t, db, "guest")

	now := time.Now()
	_, err := service.CountByDay(user.ID, now, now.Add(-time.Hour))
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Kind != KindValidation {
		t.Fatalf("Expected validation error, got %v", err)
	}
}
