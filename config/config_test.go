package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("CHAT_WINDOW")
	os.Unsetenv("REQUEST_RETENTION")
	os.Unsetenv("RESUBSCRIBE_BACKOFF")
	conf := New()

	assert.Equal(t, 50, conf.ChatWindow)
	assert.Equal(t, 3, conf.RequestRetention)
	assert.Equal(t, 5*time.Second, conf.ResubscribeBackoff)
	assert.True(t, conf.AnonymousAuthEnabled)
}

func TestNewOverrides(t *testing.T) {
	os.Setenv("CHAT_WINDOW", "20")
	os.Setenv("REQUEST_RETENTION", "10")
	os.Setenv("RESUBSCRIBE_BACKOFF", "2s")
	os.Setenv("ANONYMOUS_AUTH_ENABLED", "false")
	defer func() {
		os.Unsetenv("CHAT_WINDOW")
		os.Unsetenv("REQUEST_RETENTION")
		os.Unsetenv("RESUBSCRIBE_BACKOFF")
		os.Unsetenv("ANONYMOUS_AUTH_ENABLED")
	}()
	conf := New()

	assert.Equal(t, 20, conf.ChatWindow)
	assert.Equal(t, 10, conf.RequestRetention)
	assert.Equal(t, 2*time.Second, conf.ResubscribeBackoff)
	assert.False(t, conf.AnonymousAuthEnabled)
}

func TestNewLocation(t *testing.T) {
	os.Setenv("STATION_TIMEZONE", "America/Mexico_City")
	conf := New()
	assert.Equal(t, "America/Mexico_City", conf.Location.String())

	os.Setenv("STATION_TIMEZONE", "Not/AZone")
	conf = New()
	assert.Equal(t, time.UTC, conf.Location)

	os.Unsetenv("STATION_TIMEZONE")
	conf = New()
	assert.Equal(t, time.UTC, conf.Location)
}

func TestIsAdminEmail(t *testing.T) {
	os.Setenv("ADMIN_EMAILS", " Admin@RadioSantana.com, dj@radiosantana.com,,")
	defer os.Unsetenv("ADMIN_EMAILS")
	conf := New()

	assert.Equal(t, []string{"admin@radiosantana.com", "dj@radiosantana.com"}, conf.AdminEmails)
	assert.True(t, conf.IsAdminEmail("ADMIN@radiosantana.com"))
	assert.False(t, conf.IsAdminEmail("listener@radiosantana.com"))
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"Response": {"Message": "error it borked", "Error": "bad request"}}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
