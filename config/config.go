package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/logging"
	"github.com/linesmerrill/radio-santana-api/models"
)

const (
	defaultChatWindow         = 50
	defaultRequestRetention   = 3
	defaultResubscribeBackoff = 5 * time.Second
	defaultAnonymousRate      = 1.0
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	// JWTSecret signs the credentials issued by the identity service
	JWTSecret string
	// AdminEmails is the moderator allow-list checked on password sign-in
	AdminEmails []string
	// AnonymousAuthEnabled mirrors the provider switch for anonymous sign-in
	AnonymousAuthEnabled bool
	// AnonymousSignInRate is the number of anonymous sign-ins allowed per second
	AnonymousSignInRate float64

	ChatWindow         int
	RequestRetention   int
	ResubscribeBackoff time.Duration

	SendgridAPIKey string
	ContactEmail   string
	CloudinaryURL  string
	StreamURL      string
	StatusURL      string

	// Location is the station timezone used for the programming grid
	Location *time.Location
}

// New sets up all config related services
func New() *Config {
	// a missing .env is fine outside of local development
	_ = godotenv.Load()

	env := getEnv("ENV", "production")

	//setup zap logger and replace default logger
	logger, err := logging.New(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                  os.Getenv("DB_URI"),
		DatabaseName:         os.Getenv("DB_NAME"),
		BaseURL:              os.Getenv("BASE_URL"),
		Port:                 getEnv("PORT", "8080"),
		Env:                  env,
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AdminEmails:          splitList(os.Getenv("ADMIN_EMAILS")),
		AnonymousAuthEnabled: getEnv("ANONYMOUS_AUTH_ENABLED", "true") == "true",
		AnonymousSignInRate:  getFloat("ANONYMOUS_SIGNIN_RATE", defaultAnonymousRate),
		ChatWindow:           getInt("CHAT_WINDOW", defaultChatWindow),
		RequestRetention:     getInt("REQUEST_RETENTION", defaultRequestRetention),
		ResubscribeBackoff:   getDuration("RESUBSCRIBE_BACKOFF", defaultResubscribeBackoff),
		SendgridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		ContactEmail:         os.Getenv("CONTACT_EMAIL"),
		CloudinaryURL:        os.Getenv("CLOUDINARY_URL"),
		StreamURL:            os.Getenv("STREAM_URL"),
		StatusURL:            os.Getenv("STREAM_STATUS_URL"),
		Location:             getLocation("STATION_TIMEZONE"),
	}
}

// IsAdminEmail reports whether email is on the moderator allow-list
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	resp := models.ErrorMessageResponse{Response: models.MessageError{Message: message}}
	if err != nil {
		resp.Response.Error = err.Error()
	}
	b, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getLocation(key string) *time.Location {
	name := os.Getenv(key)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		zap.S().Warnw("unknown station timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// splitList parses a comma separated list, lower-cased and without blanks
func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
