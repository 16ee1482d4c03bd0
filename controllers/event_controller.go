package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

// followedUsersLimit caps how many followed users' statuses are merged
// into an event view.
const followedUsersLimit = 5

type EventController struct {
	db *gorm.DB
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageKey    string    `json:"image"`
	Categories  []string  `json:"categories"`
}

// GetEvents lists events with optional host filtering and pagination.
// Authenticated viewers get each row enriched with their own response and
// their followees' responses.
func (ec *EventController) GetEvents(c *gin.Context) {
	viewerID := c.GetString("user_id")
	page, limit, offset := paginationParams(c)

	query := ec.db.Model(&models.Event{})

	if hostID := c.Query("host_id"); hostID != "" {
		var host models.User
		if err := ec.db.First(&host, "id = ?", hostID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Host not found"})
			return
		}
		query = query.Where("host_id = ?", hostID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	var events []models.Event
	if err := query.Order("date ASC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	views := make([]models.EventView, 0, len(events))
	for _, event := range events {
		views = append(views, ec.buildView(event, viewerID))
	}

	utils.SendPaginated(c, views, page, limit, total)
}

// CountEvents returns how many events fall in the [since, until] window,
// optionally per host. Default window: last month up to now.
func (ec *EventController) CountEvents(c *gin.Context) {
	since, ok := parseTimeQuery(c, "since")
	if !ok {
		return
	}
	until, ok := parseTimeQuery(c, "until")
	if !ok {
		return
	}
	if until.IsZero() {
		until = time.Now()
	}
	if since.IsZero() {
		since = until.AddDate(0, -1, 0)
	}

	query := ec.db.Model(&models.Event{}).Where("date >= ? AND date <= ?", since, until)
	if hostID := c.Query("host_id"); hostID != "" {
		query = query.Where("host_id = ?", hostID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetEvent returns one event, enriched for an authenticated viewer.
func (ec *EventController) GetEvent(c *gin.Context) {
	viewerID := c.GetString("user_id")

	var event models.Event
	if err := ec.db.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	view := ec.buildView(event, viewerID)
	view.AcceptedUsers = ec.attendeesByStatus(event.ID, models.RsvpStatusAccepted)
	view.DeclinedUsers = ec.attendeesByStatus(event.ID, models.RsvpStatusDeclined)

	c.JSON(http.StatusOK, view)
}

// attendeesByStatus lists the users whose response on the event has the
// given status.
func (ec *EventController) attendeesByStatus(eventID string, status models.RsvpStatus) []models.EventAttendee {
	var attendees []models.EventAttendee
	err := ec.db.Model(&models.Rsvp{}).
		Select("users.id AS user_id, users.username AS username").
		Joins("JOIN users ON users.id = rsvps.user_id").
		Where("rsvps.event_id = ? AND rsvps.status = ?", eventID, status).
		Order("users.username ASC").
		Scan(&attendees).Error
	if err != nil {
		return nil
	}
	return attendees
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	userID := c.GetString("user_id")

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories := models.CategoryList(req.Categories)
	if err := categories.Validate(); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	event := models.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		ImageKey:    req.ImageKey,
		Categories:  categories,
		HostID:      userID,
	}

	if err := ec.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	userID := c.GetString("user_id")

	event, ok := ec.hostedEvent(c, userID)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories := models.CategoryList(req.Categories)
	if err := categories.Validate(); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"date":        req.Date,
		"location":    req.Location,
		"description": req.Description,
		"image_key":   req.ImageKey,
		"categories":  categories,
	}

	if err := ec.db.Model(event).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes a hosted event along with its responses, invites
// and comments.
func (ec *EventController) DeleteEvent(c *gin.Context) {
	userID := c.GetString("user_id")

	event, ok := ec.hostedEvent(c, userID)
	if !ok {
		return
	}

	err := ec.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Rsvp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// hostedEvent loads the :id event and checks the caller hosts it. A
// missing event is 404; an existing event hosted by someone else is 403.
func (ec *EventController) hostedEvent(c *gin.Context, userID string) (*models.Event, bool) {
	var event models.Event
	if err := ec.db.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return nil, false
	}

	if event.HostID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action"})
		return nil, false
	}

	return &event, true
}

// buildView merges the viewer's own response and their followees'
// responses into the event. An anonymous viewer gets the bare event.
func (ec *EventController) buildView(event models.Event, viewerID string) models.EventView {
	view := models.EventView{Event: event}
	if viewerID == "" {
		return view
	}

	status := models.RsvpStatusPending
	var rsvp models.Rsvp
	if err := ec.db.Where("user_id = ? AND event_id = ?", viewerID, event.ID).First(&rsvp).Error; err == nil {
		status = string(rsvp.Status)
	}
	view.RsvpStatus = &status

	var followed []models.FollowedUserStatus
	err := ec.db.Raw(`
		SELECT users.id AS user_id, users.username AS username, COALESCE(rsvps.status, ?) AS status
		FROM follows
		LEFT JOIN rsvps ON rsvps.user_id = follows.followee_id AND rsvps.event_id = ?
		JOIN users ON users.id = follows.followee_id
		WHERE follows.follower_id = ?
		ORDER BY (rsvps.status IS NULL) ASC, users.username ASC
		LIMIT ?`,
		models.RsvpStatusPending, event.ID, viewerID, followedUsersLimit,
	).Scan(&followed).Error
	if err == nil {
		view.FollowedUsers = followed
	}

	return view
}
