package identity

import (
	"errors"
	"fmt"
)

// Code classifies a failed sign-in or credential check
type Code string

// The identity failure codes
const (
	CodeNetwork             Code = "network-request-failed"
	CodeOperationNotAllowed Code = "operation-not-allowed"
	CodeTooManyRequests     Code = "too-many-requests"
	CodeUserNotFound        Code = "user-not-found"
	CodeWrongPassword       Code = "wrong-password"
	CodeInvalidEmail        Code = "invalid-email"
	CodeInvalidCredential   Code = "invalid-credential"
	CodeInternal            Code = "internal-error"
)

// Error is returned by the identity service
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("identity: %s", e.Code)
	}
	return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var messages = map[Code]string{
	CodeNetwork:             "Error de red. Revisa tu conexión e inténtalo de nuevo.",
	CodeOperationNotAllowed: "El acceso anónimo no está habilitado. Contacta al administrador.",
	CodeTooManyRequests:     "Demasiados intentos. Espera un momento e inténtalo de nuevo.",
	CodeUserNotFound:        "Usuario no encontrado.",
	CodeWrongPassword:       "Contraseña incorrecta.",
	CodeInvalidEmail:        "Correo electrónico inválido.",
	CodeInvalidCredential:   "Tu sesión ha expirado. Vuelve a iniciar sesión.",
}

// GenericMessage is shown for failures without a dedicated text
const GenericMessage = "Error al iniciar sesión. Inténtalo de nuevo."

// Message returns the user facing text for err
func Message(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		if msg, ok := messages[ie.Code]; ok {
			return msg
		}
	}
	return GenericMessage
}

// CodeOf returns the code carried by err, empty when err is not an identity error
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
