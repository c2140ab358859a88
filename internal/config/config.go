package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
	"time"    // time parses duration-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for lifetimes and costs.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to sign session JWTs
	SessionTTLHours int           // staff session time-to-live in hours
	MonitorInterval time.Duration // session liveness monitor tick interval
	BcryptCost      int           // bcrypt cost for password hashing
	QRDomains       []string      // allow-listed booking/check-in hostnames for QR URLs
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                                      // environment (dev/test/prod)
		Port:            must("APP_PORT"),                                     // port to bind the HTTP server
		DBUser:          must("DB_USER"),                                      // database user
		DBPass:          os.Getenv("DB_PASS"),                                 // database password (empty allowed)
		DBHost:          must("DB_HOST"),                                      // database host
		DBPort:          must("DB_PORT"),                                      // database port
		DBName:          must("DB_NAME"),                                      // database name
		JWTSecret:       must("JWT_SECRET"),                                   // secret used for signing session tokens
		SessionTTLHours: intOr("SESSION_TTL_HOURS", 12),                       // a session covers one shift
		MonitorInterval: durOr("SESSION_MONITOR_INTERVAL", 60*time.Second),    // liveness monitor tick
		BcryptCost:      intOr("BCRYPT_COST", 12),                             // bcrypt cost for staff provisioning
		QRDomains:       splitList(must("QR_ALLOWED_DOMAINS")),                // comma-separated hostnames
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

// intOr reads an optional integer variable, falling back to def when the
// variable is unset; a malformed value is still fatal.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// durOr reads an optional duration variable (e.g. "60s", "2m"), falling back
// to def when unset; a malformed value is fatal.
func durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

// splitList splits a comma-separated variable into trimmed, non-empty items.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
