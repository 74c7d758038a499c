package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses interval settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints for
// durations and costs, time.Duration for intervals and timeouts.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	WeatherBaseURL  string        // base URL of the external weather service
	TrackingBaseURL string        // base URL of the aircraft position feed
	HTTPTimeout     time.Duration // timeout applied to all outbound HTTP calls

	SMTPHost string // SMTP relay host for reminder emails
	SMTPPort string // SMTP relay port
	SMTPUser string // SMTP username (empty disables auth)
	SMTPPass string // SMTP password
	SMTPFrom string // From address on outgoing mail

	ReminderInterval time.Duration // how often the reminder sweep runs
	ReminderHorizon  time.Duration // how far ahead a departure triggers a reminder
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  External-service and
// scheduler settings have sensible defaults so a dev environment only has
// to provide database and JWT settings.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		WeatherBaseURL:  getenv("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
		TrackingBaseURL: getenv("TRACKING_API_URL", "https://opensky-network.org/api"),
		HTTPTimeout:     parseDur(getenv("EXTERNAL_HTTP_TIMEOUT", "10s")),

		SMTPHost: os.Getenv("SMTP_HOST"), // empty disables outgoing mail
		SMTPPort: getenv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getenv("SMTP_FROM", "noreply@airport-ops.local"),

		ReminderInterval: parseDur(getenv("REMINDER_INTERVAL", "15m")),
		ReminderHorizon:  parseDur(getenv("REMINDER_HORIZON", "24h")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
