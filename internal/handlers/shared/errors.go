package handlers

import (
	"errors"
	"net/http"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error onto the API envelope. notFoundCode
// names the resource-specific code for services.ErrNotFound.
func respondServiceError(c *gin.Context, err error, notFoundCode string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.UnauthorizedResponse(c)
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, utils.CodeValidationError, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, notFoundCode, utils.ErrNotFound)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
