package requests

import (
	"errors"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/models"
)

// User facing texts for the request queue
const (
	SubmitFailedMessage = "No se pudo enviar la petición. Inténtalo de nuevo."
	UpdateFailedMessage = "No se pudo actualizar el estado de la petición."
	ConnectionMessage   = "Error de conexión con las peticiones. Vuelve a cargar la página."
)

// WriteError is returned when the store rejects a request write. Unlike the
// chat there is one static message per operation.
type WriteError struct {
	Code    databases.Code
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	return e.Message
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ErrorMessage picks the text to show for an error returned by the queue
func ErrorMessage(err error) string {
	var ve *models.ValidationError
	var we *WriteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &we):
		return we.Message
	default:
		return ConnectionMessage
	}
}
