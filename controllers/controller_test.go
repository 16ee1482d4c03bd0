package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gatherly-api/middleware"
	"gatherly-api/models"
	"gatherly-api/services"
)

const testJWTSecret = "test-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive and
	// serializes concurrent writes from propagation fan-out.
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
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupTestRouter wires the controllers onto a bare engine with the same
// paths and middleware the production router uses. Registered here rather
// than through the routes package, which imports this one.
func setupTestRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	attendanceService := services.NewAttendanceService(db)

	authController := NewAuthController(db, testJWTSecret, nil, nil)
	userController := NewUserController(db)
	eventController := NewEventController(db)
	followController := NewFollowController(db)
	inviteController := NewInviteController(db, attendanceService, nil, true)
	rsvpController := NewRsvpController(db, attendanceService)
	commentController := NewCommentController(db)

	router := gin.New()
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)

	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(testJWTSecret))
	public.GET("/users", userController.GetUsers)
	public.GET("/users/:id", userController.GetUser)
	public.GET("/events", eventController.GetEvents)
	public.GET("/events/count", eventController.CountEvents)
	public.GET("/events/:id", eventController.GetEvent)
	public.GET("/events/:id/comments", commentController.GetComments)
	public.GET("/events/:id/comments/:comment_id", commentController.GetComment)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(testJWTSecret))
	protected.Use(middleware.RequireUser(db))
	protected.GET("/profile", authController.GetProfile)
	protected.POST("/uploads", authController.GetUploadURL)
	protected.PUT("/users/:id", userController.UpdateUser)
	protected.DELETE("/users/:id", userController.DeleteUser)
	protected.GET("/users/:id/rsvps", rsvpController.GetUserRsvps)
	protected.GET("/users/:id/follows/sent", followController.GetSentFollows)
	protected.GET("/users/:id/follows/received", followController.GetReceivedFollows)
	protected.GET("/users/:id/invites/sent", inviteController.GetSentInvites)
	protected.GET("/users/:id/invites/received", inviteController.GetReceivedInvites)
	protected.POST("/events/", eventController.CreateEvent)
	protected.PUT("/events/:id", eventController.UpdateEvent)
	protected.DELETE("/events/:id", eventController.DeleteEvent)
	protected.PUT("/events/:id/rsvp", rsvpController.UpdateRsvpForEvent)
	protected.DELETE("/events/:id/rsvp", rsvpController.DeleteRsvpForEvent)
	protected.POST("/events/:id/comments", commentController.CreateComment)
	protected.PUT("/events/:id/comments/:comment_id", commentController.UpdateComment)
	protected.DELETE("/events/:id/comments/:comment_id", commentController.DeleteComment)
	protected.POST("/follows/", followController.CreateFollow)
	protected.GET("/follows/:id", followController.GetFollow)
	protected.POST("/follows/:id/accept", followController.AcceptFollow)
	protected.POST("/follows/:id/decline", followController.DeclineFollow)
	protected.DELETE("/follows/:id", followController.DeleteFollow)
	protected.POST("/invites/", inviteController.CreateInvite)
	protected.GET("/invites/:id", inviteController.GetInvite)
	protected.POST("/invites/:id/accept", inviteController.AcceptInvite)
	protected.POST("/invites/:id/decline", inviteController.DeclineInvite)
	protected.POST("/rsvps/", rsvpController.CreateRsvp)
	protected.GET("/rsvps/count", rsvpController.CountRsvps)
	protected.GET("/rsvps/:id", rsvpController.GetRsvp)
	protected.PUT("/rsvps/:id", rsvpController.UpdateRsvp)
	protected.DELETE("/rsvps/:id", rsvpController.DeleteRsvp)

	return db, router
}

func createTestUser(t *testing.T, db *gorm.DB, username string, privacy models.UserPrivacy) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Privacy:  privacy,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, host *models.User, title string) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:         uuid.New().String(),
		Title:      title,
		Date:       time.Now().Add(48 * time.Hour).Round(time.Second),
		Location:   "Test Hall",
		Categories: models.CategoryList{"music"},
		HostID:     host.ID,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test event %s: %v", title, err)
	}
	return event
}

func createTestFollow(t *testing.T, db *gorm.DB, follower, followee *models.User, status models.FollowStatus) *models.Follow {
	t.Helper()

	follow := &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		Status:     status,
	}
	if err := db.Create(follow).Error; err != nil {
		t.Fatalf("Failed to create test follow: %v", err)
	}
	return follow
}

func createTestRsvp(t *testing.T, db *gorm.DB, user *models.User, event *models.Event, status models.RsvpStatus) *models.Rsvp {
	t.Helper()

	rsvp := &models.Rsvp{
		UserID:  user.ID,
		EventID: event.ID,
		Status:  status,
	}
	if err := db.Create(rsvp).Error; err != nil {
		t.Fatalf("Failed to create test rsvp: %v", err)
	}
	return rsvp
}

func authToken(t *testing.T, userID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func unmarshalList(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}
