package validators

import (
	"strings"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
)

type trustedContactRules struct {
	Email string `json:"email" validate:"not_blank"`
	Phone string `json:"phone" validate:"not_blank"`
}

type objectIDRules struct {
	ID string `json:"id" validate:"required,object_id"`
}

func ValidateEmitAlert(req *models.EmitAlertRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateDeviceTokenRegistration(req *models.DeviceTokenRegistration) ValidationErrors {
	errs := ValidateStruct(req)
	// A token is only meaningful once permission has been granted.
	if req.Permission == models.PermissionGranted && strings.TrimSpace(req.Token) == "" {
		errs = append(errs, ValidationError{Field: "token", Tag: "required", Message: "token is required"})
	}
	return errs
}

// ValidateTrustedContact checks presence only. The email is matched verbatim
// against accounts, so no format rule is applied.
func ValidateTrustedContact(req *models.SetTrustedContactRequest) ValidationErrors {
	return ValidateStruct(&trustedContactRules{Email: req.Email, Phone: req.Phone})
}

func ValidateObjectID(id string) ValidationErrors {
	return ValidateStruct(&objectIDRules{ID: id})
}

