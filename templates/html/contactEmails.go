package templates

import (
	"fmt"
	"html"
)

// ContactEmailData holds the fields of a contact form submission
type ContactEmailData struct {
	Name    string
	Email   string
	Message string
}

// ContactAdminSubject is the subject of the mail the station receives
func ContactAdminSubject(name string) string {
	return fmt.Sprintf("Nuevo mensaje de %s", name)
}

// ContactConfirmationSubject is the subject of the copy sent back to the sender
const ContactConfirmationSubject = "Gracias por contactar a Radio Santana"

// RenderContactAdminEmail generates the HTML for the mail forwarded to the station
func RenderContactAdminEmail(data ContactEmailData) string {
	body := fmt.Sprintf(`<p>Has recibido un nuevo mensaje desde el formulario de contacto.</p>
      <p class="meta"><strong>Nombre:</strong> %s<br><strong>Correo:</strong> %s</p>
      <div class="quote">%s</div>
      <p class="meta">Responde a este correo para contestar directamente al remitente.</p>`,
		html.EscapeString(data.Name), html.EscapeString(data.Email), textToHTML(data.Message))
	return renderLayout(ContactAdminSubject(data.Name), body)
}

// ContactAdminText is the plain text part of the mail forwarded to the station
func ContactAdminText(data ContactEmailData) string {
	return fmt.Sprintf("Nombre: %s\nCorreo: %s\n\n%s", data.Name, data.Email, data.Message)
}

// RenderContactConfirmationEmail generates the HTML for the confirmation sent
// to whoever filled in the contact form
func RenderContactConfirmationEmail(data ContactEmailData) string {
	body := fmt.Sprintf(`<p>Hola %s,</p>
      <p>Hemos recibido tu mensaje:</p>
      <div class="quote">%s</div>
      <p>Nos pondremos en contacto contigo pronto.</p>
      <p>Atentamente,<br>El equipo de Radio Santana</p>`,
		html.EscapeString(data.Name), textToHTML(data.Message))
	return renderLayout(ContactConfirmationSubject, body)
}

// ContactConfirmationText is the plain text part of the confirmation
func ContactConfirmationText(data ContactEmailData) string {
	return fmt.Sprintf("Hola %s,\n\nHemos recibido tu mensaje:\n\n\"%s\"\n\nNos pondremos en contacto contigo pronto.\n\nAtentamente,\nEl equipo de Radio Santana", data.Name, data.Message)
}
