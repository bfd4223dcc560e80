package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	netmail "net/mail"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
	templates "github.com/linesmerrill/radio-santana-api/templates/html"
)

// User facing texts of the contact form
const (
	ContactSentMessage        = "¡Mensaje enviado! Te responderemos pronto."
	ContactFailedMessage      = "No se pudo enviar el mensaje. Inténtalo más tarde."
	ContactUnavailableMessage = "El formulario de contacto no está disponible en este momento."
)

const stationSenderName = "Radio Santana"

// Mailer delivers a prepared email, *sendgrid.Client satisfies it
type Mailer interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Contact forwards contact form submissions to the station and confirms them
// to the sender
type Contact struct {
	Mailer       Mailer
	StationEmail string
	Sink         telemetry.Sink
}

// ContactHandler validates the form and sends both emails
func (c Contact) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var body models.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validateContact(&body); err != nil {
		writeError(w, err)
		return
	}
	if c.Mailer == nil || c.StationEmail == "" {
		config.ErrorStatus(ContactUnavailableMessage, http.StatusServiceUnavailable, w, nil)
		return
	}

	data := templates.ContactEmailData{Name: body.Name, Email: body.Email, Message: body.Message}
	station := mail.NewEmail(stationSenderName, c.StationEmail)
	sender := mail.NewEmail(body.Name, body.Email)

	toStation := mail.NewSingleEmail(station, templates.ContactAdminSubject(body.Name), station,
		templates.ContactAdminText(data), templates.RenderContactAdminEmail(data))
	toStation.SetReplyTo(sender)

	toSender := mail.NewSingleEmail(station, templates.ContactConfirmationSubject, sender,
		templates.ContactConfirmationText(data), templates.RenderContactConfirmationEmail(data))
	toSender.SetReplyTo(station)

	var g errgroup.Group
	g.Go(func() error { return c.send("station", toStation) })
	g.Go(func() error { return c.send("confirmation", toSender) })
	if err := g.Wait(); err != nil {
		config.ErrorStatus(ContactFailedMessage, http.StatusBadGateway, w, err)
		return
	}

	if c.Sink != nil {
		c.Sink.RecordEvent(telemetry.EventContactSent, nil)
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": ContactSentMessage})
}

func (c Contact) send(kind string, message *mail.SGMailV3) error {
	response, err := c.Mailer.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send contact email", "kind", kind, "error", err)
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		zap.S().Warnw("contact email sent with non-2xx status", "kind", kind, "statusCode", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	zap.S().Infow("contact email sent successfully", "kind", kind, "statusCode", response.StatusCode)
	return nil
}

func validateContact(body *models.ContactMessage) error {
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	body.Message = strings.TrimSpace(body.Message)
	if body.Name == "" || body.Email == "" || body.Message == "" {
		return &models.ValidationError{Field: "form", Message: "Por favor completa todos los campos."}
	}
	addr, err := netmail.ParseAddress(body.Email)
	if err != nil || addr.Address != body.Email {
		return &models.ValidationError{Field: "email", Message: "Ingresa un correo electrónico válido."}
	}
	return nil
}
