package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/services"
)

type InviteController struct {
	db                *gorm.DB
	attendanceService *services.AttendanceService
	emailService      *services.EmailService

	// When false an invite reply only touches the invitee's own row.
	propagateOnReply bool
}

func NewInviteController(db *gorm.DB, attendanceService *services.AttendanceService, emailService *services.EmailService, propagateOnReply bool) *InviteController {
	return &InviteController{
		db:                db,
		attendanceService: attendanceService,
		emailService:      emailService,
		propagateOnReply:  propagateOnReply,
	}
}

type CreateInviteRequest struct {
	EventID   string `json:"event_id" binding:"required"`
	InviteeID string `json:"invitee_id" binding:"required"`
}

// CreateInvite invites another user to an event. A duplicate
// (inviter, event, invitee) triple is a conflict returning the existing
// invite's id.
func (ic *InviteController) CreateInvite(c *gin.Context) {
	inviterID := c.GetString("user_id")

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := ic.db.First(&event, "id = ?", req.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event does not exist"})
		return
	}

	var invitee models.User
	if err := ic.db.First(&invitee, "id = ?", req.InviteeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var existingInvite models.Invite
	err := ic.db.Where("inviter_id = ? AND event_id = ? AND invitee_id = ?",
		inviterID, req.EventID, req.InviteeID).First(&existingInvite).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Invite already exists", "existing_id": existingInvite.ID})
		return
	}

	invite := models.Invite{
		EventID:   req.EventID,
		InviterID: inviterID,
		InviteeID: req.InviteeID,
		Status:    models.InviteStatusPending,
	}

	if err := ic.db.Create(&invite).Error; err != nil {
		// The unique triple index closes the check-then-create race.
		c.JSON(http.StatusConflict, gin.H{"error": "Invite already exists"})
		return
	}

	if ic.emailService != nil {
		var inviter models.User
		if err := ic.db.First(&inviter, "id = ?", inviterID).Error; err == nil {
			if err := ic.emailService.SendInviteNotification(invitee.Email, inviter.Username, event.Title); err != nil {
				fmt.Printf("Failed to send invite notification: %v\n", err)
			}
		}
	}

	c.JSON(http.StatusCreated, invite)
}

// AcceptInvite accepts a pending invite and records the invitee's
// attendance through the same respond path a direct RSVP takes.
func (ic *InviteController) AcceptInvite(c *gin.Context) {
	ic.replyToInvite(c, models.InviteStatusAccepted, models.RsvpStatusAccepted)
}

// DeclineInvite declines a pending invite, mirroring the decline onto the
// invitee's Rsvp.
func (ic *InviteController) DeclineInvite(c *gin.Context) {
	ic.replyToInvite(c, models.InviteStatusDeclined, models.RsvpStatusDeclined)
}

func (ic *InviteController) replyToInvite(c *gin.Context, newStatus models.InviteStatus, rsvpStatus models.RsvpStatus) {
	userID := c.GetString("user_id")

	invite, ok := ic.findInvite(c)
	if !ok {
		return
	}

	if invite.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting on someone else's invite"})
		return
	}
	if invite.Status != models.InviteStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Invite not pending"})
		return
	}

	// Guarded transition: only flip the row if it is still pending, so two
	// racing replies cannot both win.
	res := ic.db.Model(&models.Invite{}).
		Where("id = ? AND status = ?", invite.ID, models.InviteStatusPending).
		Update("status", newStatus)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invite"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Invite not pending"})
		return
	}
	invite.Status = newStatus

	var result *services.RespondResult
	if ic.propagateOnReply {
		var err error
		result, err = ic.attendanceService.Respond(userID, invite.EventID, rsvpStatus)
		if err != nil {
			// The invite transition already happened; report the rsvp
			// failure without pretending it rolled back.
			handleServiceError(c, err)
			return
		}
	} else {
		if err := ic.attendanceService.UpsertWithoutPropagation(userID, invite.EventID, rsvpStatus); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	response := gin.H{"invite": invite}
	if result != nil {
		response["rsvp"] = result.Rsvp
		response["propagated"] = result.Propagated
		if len(result.Failures) > 0 {
			response["propagation_failures"] = result.Failures
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetInvite shows an invite to its inviter or invitee.
func (ic *InviteController) GetInvite(c *gin.Context) {
	userID := c.GetString("user_id")

	invite, ok := ic.findInvite(c)
	if !ok {
		return
	}

	if invite.InviterID != userID && invite.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Looking at someone else's invite"})
		return
	}

	c.JSON(http.StatusOK, invite)
}

// GetSentInvites lists invites the target user sent.
func (ic *InviteController) GetSentInvites(c *gin.Context) {
	target, ok := ic.ownTargetUser(c)
	if !ok {
		return
	}

	ic.listInvites(c, "inviter_id = ?", target.ID)
}

// GetReceivedInvites lists invites the target user received.
func (ic *InviteController) GetReceivedInvites(c *gin.Context) {
	target, ok := ic.ownTargetUser(c)
	if !ok {
		return
	}

	ic.listInvites(c, "invitee_id = ?", target.ID)
}

func (ic *InviteController) listInvites(c *gin.Context, condition string, targetID string) {
	query := ic.db.Where(condition, targetID)

	if status := c.Query("status"); status != "" {
		if !models.ValidInviteStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status in request"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var invites []models.Invite
	if err := query.Order("created_at DESC").Find(&invites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, invites)
}

// ownTargetUser loads the :id user; invite lists are caller-only.
func (ic *InviteController) ownTargetUser(c *gin.Context) (*models.User, bool) {
	callerID := c.GetString("user_id")

	var target models.User
	if err := ic.db.First(&target, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	if target.ID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized to view these invites"})
		return nil, false
	}

	return &target, true
}

func (ic *InviteController) findInvite(c *gin.Context) (*models.Invite, bool) {
	inviteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invite ID"})
		return nil, false
	}

	var invite models.Invite
	if err := ic.db.First(&invite, "id = ?", uint(inviteID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return nil, false
	}

	return &invite, true
}
