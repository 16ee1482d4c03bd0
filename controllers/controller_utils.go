package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"gatherly-api/services"
	"gatherly-api/utils"
)

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// handleServiceError translates a typed service error into the matching
// HTTP response. Anything that is not a services.Error is an internal
// error and says no more than that.
func handleServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		utils.SendError(c, http.StatusNotFound, svcErr.Message)
	case services.KindForbidden:
		utils.SendError(c, http.StatusForbidden, svcErr.Message)
	case services.KindConflict:
		body := gin.H{"error": svcErr.Message, "code": http.StatusConflict}
		if svcErr.ExistingID != 0 {
			body["existing_id"] = svcErr.ExistingID
		}
		c.JSON(http.StatusConflict, body)
	case services.KindValidation:
		utils.SendValidationError(c, svcErr.Message)
	default:
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// paginationParams reads ?page= and ?limit= with sane defaults and a cap.
func paginationParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}
