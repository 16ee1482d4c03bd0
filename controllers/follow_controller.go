package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

type FollowController struct {
	db *gorm.DB
}

func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

type CreateFollowRequest struct {
	FolloweeID string  `json:"followee_id" binding:"required"`
	EventID    *string `json:"event_id"`
}

// CreateFollow creates a pending follow edge from the caller to the
// followee. Self-follows are rejected outright and an existing edge is a
// conflict carrying the existing edge's id, never a silent success.
func (fc *FollowController) CreateFollow(c *gin.Context) {
	followerID := c.GetString("user_id")

	var req CreateFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if followerID == req.FolloweeID {
		utils.SendValidationError(c, "User cannot follow oneself")
		return
	}

	var followee models.User
	if err := fc.db.First(&followee, "id = ?", req.FolloweeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var existingFollow models.Follow
	if err := fc.db.Where("follower_id = ? AND followee_id = ?", followerID, req.FolloweeID).First(&existingFollow).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Follow already exists", "existing_id": existingFollow.ID})
		return
	}

	follow := models.Follow{
		FollowerID: followerID,
		FolloweeID: req.FolloweeID,
		EventID:    req.EventID,
		Status:     models.FollowStatusPending,
	}

	if err := fc.db.Create(&follow).Error; err != nil {
		// The unique pair index closes the check-then-create race.
		c.JSON(http.StatusConflict, gin.H{"error": "Follow already exists"})
		return
	}

	c.JSON(http.StatusCreated, follow)
}

// GetFollow shows a follow edge to its follower only.
func (fc *FollowController) GetFollow(c *gin.Context) {
	userID := c.GetString("user_id")

	follow, ok := fc.findFollow(c)
	if !ok {
		return
	}

	if follow.FollowerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Looking at someone else's follow"})
		return
	}

	c.JSON(http.StatusOK, follow)
}

// AcceptFollow lets the followee accept a pending edge.
func (fc *FollowController) AcceptFollow(c *gin.Context) {
	fc.updateFollowStatus(c, models.FollowStatusAccepted)
}

// DeclineFollow lets the followee decline a pending edge.
func (fc *FollowController) DeclineFollow(c *gin.Context) {
	fc.updateFollowStatus(c, models.FollowStatusDeclined)
}

func (fc *FollowController) updateFollowStatus(c *gin.Context, status models.FollowStatus) {
	userID := c.GetString("user_id")

	follow, ok := fc.findFollow(c)
	if !ok {
		return
	}

	if follow.FolloweeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting on someone else's follow"})
		return
	}
	if follow.Status != models.FollowStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Follow not pending"})
		return
	}

	// Guarded transition: only flip the row if it is still pending, so two
	// racing replies cannot both win.
	res := fc.db.Model(&models.Follow{}).
		Where("id = ? AND status = ?", follow.ID, models.FollowStatusPending).
		Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update follow"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Follow not pending"})
		return
	}
	follow.Status = status

	c.JSON(http.StatusOK, follow)
}

// DeleteFollow removes an edge; only its follower may do so.
func (fc *FollowController) DeleteFollow(c *gin.Context) {
	userID := c.GetString("user_id")

	follow, ok := fc.findFollow(c)
	if !ok {
		return
	}

	if follow.FollowerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Deleting someone else's follow"})
		return
	}

	if err := fc.db.Delete(follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete follow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Follow deleted successfully"})
}

// GetSentFollows lists edges where the target user is the follower.
func (fc *FollowController) GetSentFollows(c *gin.Context) {
	target, ok := fc.visibleTargetUser(c)
	if !ok {
		return
	}

	fc.listFollows(c, "follower_id = ?", target.ID)
}

// GetReceivedFollows lists edges where the target user is the followee.
func (fc *FollowController) GetReceivedFollows(c *gin.Context) {
	target, ok := fc.visibleTargetUser(c)
	if !ok {
		return
	}

	fc.listFollows(c, "followee_id = ?", target.ID)
}

func (fc *FollowController) listFollows(c *gin.Context, condition string, targetID string) {
	query := fc.db.Where(condition, targetID)

	if status := c.Query("status"); status != "" {
		if !models.ValidFollowStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status in request"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var follows []models.Follow
	if err := query.Order("created_at DESC").Find(&follows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follows"})
		return
	}

	c.JSON(http.StatusOK, follows)
}

// visibleTargetUser loads the :id user and enforces list visibility: the
// caller may always see their own lists, anyone may see a public user's.
func (fc *FollowController) visibleTargetUser(c *gin.Context) (*models.User, bool) {
	callerID := c.GetString("user_id")

	var target models.User
	if err := fc.db.First(&target, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	if target.ID != callerID && !target.IsPublic() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized to view these follows"})
		return nil, false
	}

	return &target, true
}

func (fc *FollowController) findFollow(c *gin.Context) (*models.Follow, bool) {
	followID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid follow ID"})
		return nil, false
	}

	var follow models.Follow
	if err := fc.db.First(&follow, "id = ?", uint(followID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow not found"})
		return nil, false
	}

	return &follow, true
}
