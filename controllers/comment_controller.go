package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly-api/models"
)

type CommentController struct {
	db *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetComments lists an event's comments. Public endpoint.
func (cc *CommentController) GetComments(c *gin.Context) {
	event, ok := cc.findEvent(c)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := cc.db.Where("event_id = ?", event.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// GetComment returns one comment on an event. Public endpoint.
func (cc *CommentController) GetComment(c *gin.Context) {
	event, ok := cc.findEvent(c)
	if !ok {
		return
	}

	comment, ok := cc.findComment(c, event.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")

	event, ok := cc.findEvent(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		ID:      uuid.New().String(),
		EventID: event.ID,
		UserID:  userID,
		Content: req.Content,
	}

	if err := cc.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment; only its author may do so.
func (cc *CommentController) UpdateComment(c *gin.Context) {
	userID := c.GetString("user_id")

	event, ok := cc.findEvent(c)
	if !ok {
		return
	}

	comment, ok := cc.findComment(c, event.ID)
	if !ok {
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := cc.db.Model(comment).Update("content", req.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment; only its author may do so.
func (cc *CommentController) DeleteComment(c *gin.Context) {
	userID := c.GetString("user_id")

	event, ok := cc.findEvent(c)
	if !ok {
		return
	}

	comment, ok := cc.findComment(c, event.ID)
	if !ok {
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action"})
		return
	}

	if err := cc.db.Delete(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (cc *CommentController) findEvent(c *gin.Context) (*models.Event, bool) {
	var event models.Event
	if err := cc.db.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return nil, false
	}
	return &event, true
}

func (cc *CommentController) findComment(c *gin.Context, eventID string) (*models.Comment, bool) {
	var comment models.Comment
	if err := cc.db.First(&comment, "id = ? AND event_id = ?", c.Param("comment_id"), eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	return &comment, true
}
