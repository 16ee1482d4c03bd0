package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

type UpdateUserRequest struct {
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Privacy  models.UserPrivacy `json:"privacy"`
}

// GetUsers lists users, optionally filtered by a keyword matched against
// email and username. Public endpoint.
func (uc *UserController) GetUsers(c *gin.Context) {
	var users []models.User
	query := uc.db

	if keyword := c.Query("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("email LIKE ? OR username LIKE ?", pattern, pattern)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser returns one user. Public endpoint.
func (uc *UserController) GetUser(c *gin.Context) {
	var user models.User
	if err := uc.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser lets users change their own email, password and privacy.
func (uc *UserController) UpdateUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot update someone else's account"})
		return
	}

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		if !utils.IsValidEmail(req.Email) {
			utils.SendValidationError(c, "Invalid email address")
			return
		}
		updates["email"] = req.Email
	}
	if req.Password != "" {
		if !utils.IsValidPassword(req.Password) {
			utils.SendValidationError(c, "Password too weak")
			return
		}
		hashed, err := hashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		updates["password"] = hashed
	}
	if req.Privacy != "" {
		if req.Privacy != models.UserPrivacyPublic && req.Privacy != models.UserPrivacyPrivate {
			utils.SendValidationError(c, "Privacy must be public or private")
			return
		}
		updates["privacy"] = req.Privacy
	}

	if len(updates) > 0 {
		if err := uc.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes the caller's own account and everything hanging off
// it: hosted events (with their responses, invites and comments), the
// caller's rsvps, follow edges in both directions, invites in both
// directions and authored comments.
func (uc *UserController) DeleteUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete someone else's account"})
		return
	}

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err := uc.db.Transaction(func(tx *gorm.DB) error {
		var hostedEventIDs []string
		if err := tx.Model(&models.Event{}).Where("host_id = ?", userID).Pluck("id", &hostedEventIDs).Error; err != nil {
			return err
		}
		if len(hostedEventIDs) > 0 {
			if err := tx.Where("event_id IN ?", hostedEventIDs).Delete(&models.Rsvp{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", hostedEventIDs).Delete(&models.Invite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", hostedEventIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("host_id = ?", userID).Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Rsvp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inviter_id = ? OR invitee_id = ?", userID, userID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
