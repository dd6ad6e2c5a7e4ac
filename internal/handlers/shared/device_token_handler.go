package handlers

import (
	"errors"
	"net/http"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/middleware"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/validators"
	"github.com/gin-gonic/gin"
)

type DeviceTokenHandler struct {
	tokenService services.DeviceTokenService
}

func NewDeviceTokenHandler(tokenService services.DeviceTokenService) *DeviceTokenHandler {
	return &DeviceTokenHandler{tokenService: tokenService}
}

// RegisterToken stores the caller's push token, replacing any previous one.
func (h *DeviceTokenHandler) RegisterToken(c *gin.Context) {
	var request models.DeviceTokenRegistration
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateDeviceTokenRegistration(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	token, err := h.tokenService.RegisterToken(c.Request.Context(), middleware.GetCaller(c), &request)
	if err != nil {
		if errors.Is(err, services.ErrPermissionDenied) {
			utils.ErrorResponse(c, http.StatusForbidden, utils.CodePushPermissionDenied, "Push notification permission was not granted")
			return
		}
		respondServiceError(c, err, utils.CodeDeviceTokenNotRegistered)
		return
	}

	utils.SuccessResponse(c, "Device token registered successfully", token)
}

func (h *DeviceTokenHandler) GetToken(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.tokenService.GetToken(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, utils.CodeDeviceTokenNotRegistered)
		return
	}

	utils.SuccessResponse(c, "Device token retrieved successfully", token)
}
