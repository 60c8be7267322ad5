package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lorebase/internal/app/models/dto"
)

// BindJSON binds the request body into obj using gin's validator tags.
// On failure it writes a 400 with per-field details and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewFailureResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
