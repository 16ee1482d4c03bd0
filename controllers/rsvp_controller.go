package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/services"
)

type RsvpController struct {
	db                *gorm.DB
	attendanceService *services.AttendanceService
}

func NewRsvpController(db *gorm.DB, attendanceService *services.AttendanceService) *RsvpController {
	return &RsvpController{db: db, attendanceService: attendanceService}
}

type RespondRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type UpdateRsvpRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateRsvp records the caller's response to an event. Responding again
// with the same or a different status updates the existing row in place;
// an unchanged status is a no-op success, not a conflict.
func (rc *RsvpController) CreateRsvp(c *gin.Context) {
	userID := c.GetString("user_id")

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := rc.attendanceService.Respond(userID, req.EventID, models.RsvpStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// UpdateRsvpForEvent is the canonical event-id-keyed update: there is at
// most one Rsvp per (caller, event), so the event id identifies it fully.
func (rc *RsvpController) UpdateRsvpForEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var req UpdateRsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := rc.attendanceService.Respond(userID, eventID, models.RsvpStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteRsvpForEvent removes the caller's own response to the event.
// Followers' mirrored rows stay untouched.
func (rc *RsvpController) DeleteRsvpForEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	if err := rc.attendanceService.Remove(userID, eventID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "RSVP deleted"})
}

// GetRsvp returns a single Rsvp to its owner.
func (rc *RsvpController) GetRsvp(c *gin.Context) {
	userID := c.GetString("user_id")

	rsvpID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP ID"})
		return
	}

	rsvp, err := rc.attendanceService.Get(uint(rsvpID), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvp)
}

// UpdateRsvp is the deprecated id-keyed update, kept for old clients.
func (rc *RsvpController) UpdateRsvp(c *gin.Context) {
	userID := c.GetString("user_id")

	rsvpID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP ID"})
		return
	}

	var req UpdateRsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rsvp, err := rc.attendanceService.Get(uint(rsvpID), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := rc.attendanceService.Respond(userID, rsvp.EventID, models.RsvpStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteRsvp is the deprecated id-keyed delete, kept for old clients.
func (rc *RsvpController) DeleteRsvp(c *gin.Context) {
	userID := c.GetString("user_id")

	rsvpID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP ID"})
		return
	}

	if err := rc.attendanceService.RemoveByID(uint(rsvpID), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "RSVP deleted"})
}

// GetUserRsvps lists the target user's Rsvps; only the user themselves may
// look.
func (rc *RsvpController) GetUserRsvps(c *gin.Context) {
	callerID := c.GetString("user_id")
	targetID := c.Param("id")

	var target models.User
	if err := rc.db.First(&target, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized to view these RSVPs"})
		return
	}

	rsvps, err := rc.attendanceService.List(targetID, c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvps)
}

// CountRsvps buckets the caller's own Rsvp creations per calendar day.
// Without ?since=/&until= the window is the last 30 days ending today.
func (rc *RsvpController) CountRsvps(c *gin.Context) {
	userID := c.GetString("user_id")

	since, ok := parseTimeQuery(c, "since")
	if !ok {
		return
	}
	until, ok := parseTimeQuery(c, "until")
	if !ok {
		return
	}

	counts, err := rc.attendanceService.CountByDay(userID, since, until)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Bare dates are accepted too.
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " timestamp"})
		return time.Time{}, false
	}
	return t, true
}
