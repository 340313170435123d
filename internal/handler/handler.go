package handler

import (
	"asset-backend/internal/apperr"
	"asset-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps an error kind onto a status code and the standard
// error envelope.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}
