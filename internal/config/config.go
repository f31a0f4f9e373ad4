package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database and JWT settings back the seller
// account endpoints; the remaining fields drive the show tracker itself.
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

	LogDir         string // directory for bidder/auction history CSV files
	Tier           string // subscription tier at boot (DB record overrides)
	ChatWebhookURL string // chat endpoint for bin notifications; empty disables them

	GiveawayAnnouncement string // template for the giveaway announcement, {number} placeholder
	TopBuyerShoutout     string // template for the top-buyer shoutout, {username}/{count} placeholders
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional values
// carry the defaults the tracker shipped with.
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

		LogDir:         getenv("LOG_DIR", "logs"),
		Tier:           getenv("SUBSCRIPTION_TIER", "Trial"),
		ChatWebhookURL: os.Getenv("CHAT_WEBHOOK_URL"),

		GiveawayAnnouncement: getenv("GIVEAWAY_ANNOUNCEMENT_TEXT",
			"Giveaway #{number} Alert! Must be following us & share the stream to enter! Winner announced in a few minutes!"),
		TopBuyerShoutout: getenv("TOP_BUYER_TEXT",
			"Great job, {username}! You've snagged {count} items!"),
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
