package handlers

import (
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/middleware"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/validators"
	"github.com/gin-gonic/gin"
)

type TrustedContactHandler struct {
	contactService services.TrustedContactService
}

func NewTrustedContactHandler(contactService services.TrustedContactService) *TrustedContactHandler {
	return &TrustedContactHandler{contactService: contactService}
}

func (h *TrustedContactHandler) SetContact(c *gin.Context) {
	var request models.SetTrustedContactRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateTrustedContact(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	contact, err := h.contactService.SetContact(c.Request.Context(), middleware.GetCaller(c), &request)
	if err != nil {
		respondServiceError(c, err, utils.CodeTrustedContactNotFound)
		return
	}

	utils.SuccessResponse(c, "Trusted contact saved successfully", contact)
}

func (h *TrustedContactHandler) GetContact(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	contact, err := h.contactService.GetContact(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, utils.CodeTrustedContactNotFound)
		return
	}

	utils.SuccessResponse(c, "Trusted contact retrieved successfully", contact)
}
