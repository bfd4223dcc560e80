package chat

import (
	"errors"
	"fmt"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/models"
)

// WriteError is returned when the store rejects a chat message
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

var writeMessages = map[databases.Code]string{
	databases.CodePermissionDenied:   "No tienes permisos para enviar mensajes.",
	databases.CodeUnauthenticated:    "Debes iniciar sesión para enviar mensajes.",
	databases.CodeNotFound:           "El chat no está disponible.",
	databases.CodeAlreadyExists:      "Este mensaje ya fue enviado.",
	databases.CodeResourceExhausted:  "Has enviado demasiados mensajes. Inténtalo más tarde.",
	databases.CodeFailedPrecondition: "No se puede enviar el mensaje en este momento.",
	databases.CodeAborted:            "El envío se interrumpió. Inténtalo de nuevo.",
	databases.CodeOutOfRange:         "El mensaje es demasiado largo.",
	databases.CodeUnimplemented:      "Esta función no está disponible.",
	databases.CodeInternal:           "Error interno del servidor. Inténtalo de nuevo.",
	databases.CodeUnavailable:        "El servicio no está disponible. Revisa tu conexión.",
	databases.CodeDataLoss:           "Se perdieron datos al enviar el mensaje.",
	databases.CodeDeadlineExceeded:   "El servidor tardó demasiado en responder.",
}

// WriteMessage returns the user facing text for a failed write with code
func WriteMessage(code databases.Code) string {
	if msg, ok := writeMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Error al enviar el mensaje (%s). Inténtalo de nuevo.", code)
}

func newWriteError(err error) *WriteError {
	code := databases.Classify(err)
	return &WriteError{Code: code, Message: WriteMessage(code), Err: err}
}

// ConnectionMessage is shown when the live chat subscription ends for good
const ConnectionMessage = "Error de conexión con el chat. Vuelve a conectarte."

// ErrorMessage picks the text to show for an error returned by the manager
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
