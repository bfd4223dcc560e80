package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderContactAdminEmail(t *testing.T) {
	out := RenderContactAdminEmail(ContactEmailData{
		Name:    "Ana <b>",
		Email:   "ana@example.com",
		Message: "Hola\nQuiero pedir una canción",
	})

	assert.Contains(t, out, "<title>Nuevo mensaje de Ana &lt;b&gt;</title>")
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "Hola<br>Quiero pedir una canción")
	assert.NotContains(t, out, "Ana <b>")
}

func TestRenderContactConfirmationEmail(t *testing.T) {
	data := ContactEmailData{Name: "Luis", Email: "luis@example.com", Message: "<script>x</script>"}
	out := RenderContactConfirmationEmail(data)

	assert.Contains(t, out, ContactConfirmationSubject)
	assert.Contains(t, out, "Hola Luis,")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
	assert.False(t, strings.Contains(out, "<script>"))
	assert.Contains(t, out, StationSiteURL)

	assert.Contains(t, ContactConfirmationText(data), "\"<script>x</script>\"")
}
