package handlers

import (
	"errors"
	"net/http"

	"github.com/linesmerrill/radio-santana-api/chat"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/requests"
)

// GenericErrorMessage is shown for failures with no better description
const GenericErrorMessage = "Ocurrió un error inesperado. Inténtalo de nuevo."

// storeStatus maps a store failure onto the HTTP status returned for it
func storeStatus(code databases.Code) int {
	switch code {
	case databases.CodeNotFound:
		return http.StatusNotFound
	case databases.CodeAlreadyExists, databases.CodeAborted, databases.CodeFailedPrecondition:
		return http.StatusConflict
	case databases.CodePermissionDenied:
		return http.StatusForbidden
	case databases.CodeUnauthenticated:
		return http.StatusUnauthorized
	case databases.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case databases.CodeOutOfRange:
		return http.StatusRequestEntityTooLarge
	case databases.CodeUnavailable:
		return http.StatusServiceUnavailable
	case databases.CodeDeadlineExceeded, databases.CodeCancelled:
		return http.StatusGatewayTimeout
	case databases.CodeUnimplemented:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// identityStatus maps a sign-in failure onto the HTTP status returned for it
func identityStatus(code identity.Code) int {
	switch code {
	case identity.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case identity.CodeNetwork, identity.CodeOperationNotAllowed:
		return http.StatusServiceUnavailable
	case identity.CodeInvalidEmail:
		return http.StatusBadRequest
	case identity.CodeUserNotFound, identity.CodeWrongPassword, identity.CodeInvalidCredential:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError picks the status and user facing message for err
func writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var cwe *chat.WriteError
	var rwe *requests.WriteError
	var ie *identity.Error
	var se *databases.Error

	switch {
	case errors.As(err, &ve):
		config.ErrorStatus(ve.Message, http.StatusBadRequest, w, err)
	case errors.As(err, &cwe):
		config.ErrorStatus(cwe.Message, storeStatus(cwe.Code), w, err)
	case errors.As(err, &rwe):
		config.ErrorStatus(rwe.Message, storeStatus(rwe.Code), w, err)
	case errors.As(err, &ie):
		config.ErrorStatus(identity.Message(err), identityStatus(ie.Code), w, err)
	case errors.As(err, &se):
		config.ErrorStatus(GenericErrorMessage, storeStatus(se.Code), w, err)
	default:
		config.ErrorStatus(GenericErrorMessage, http.StatusInternalServerError, w, err)
	}
}
