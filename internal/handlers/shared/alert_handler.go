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

type AlertHandler struct {
	alertService services.AlertService
}

func NewAlertHandler(alertService services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// EmitAlert handles a panic-button press. The body carries the permission
// outcome and the fix the device obtained.
func (h *AlertHandler) EmitAlert(c *gin.Context) {
	var request models.EmitAlertRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateEmitAlert(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	result, err := h.alertService.EmitAlert(c.Request.Context(), middleware.GetCaller(c), services.NewReportedLocation(&request))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPermissionDenied):
			utils.ErrorResponse(c, http.StatusForbidden, utils.CodeLocationPermissionDenied, "Location permission is required to send an alert")
		case errors.Is(err, services.ErrLocationUnavailable):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, utils.CodeLocationUnavailable, "Current location could not be determined")
		case errors.Is(err, services.ErrAlertPersistFailed):
			utils.ErrorResponse(c, http.StatusInternalServerError, utils.CodeAlertPersistFailed, "Failed to send alert, please try again")
		default:
			respondServiceError(c, err, utils.CodeNotFound)
		}
		return
	}

	utils.CreatedResponse(c, "Alert sent successfully", result)
}

// ListAlerts returns the caller's own alert history, newest first.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	alerts, total, err := h.alertService.ListAlerts(c.Request.Context(), middleware.GetCaller(c), params)
	if err != nil {
		respondServiceError(c, err, utils.CodeNotFound)
		return
	}

	utils.SuccessResponseWithMeta(c, "Alerts retrieved successfully", alerts, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *AlertHandler) GetAlert(c *gin.Context) {
	alert, err := h.alertService.GetAlert(c.Request.Context(), middleware.GetCaller(c), c.Param("protocol"))
	if err != nil {
		respondServiceError(c, err, utils.CodeNotFound)
		return
	}

	utils.SuccessResponse(c, "Alert retrieved successfully", alert)
}

func (h *AlertHandler) GetAvailability(c *gin.Context) {
	availability, err := h.alertService.Availability(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		respondServiceError(c, err, utils.CodeNotFound)
		return
	}

	utils.SuccessResponse(c, "Panic button availability retrieved", availability)
}
