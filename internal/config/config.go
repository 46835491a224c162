package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for paths and secrets, ints for limits and costs.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBPath        string // path to the SQLite database file
	PostersDir    string // directory holding original poster images
	PublicDir     string // directory holding the public site
	AdminDir      string // directory holding the admin site
	JWTSecret     string // secret used to sign admin JWTs
	AccessTTLMin  int    // admin access token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
	AdminUsername string // username of the seeded admin account
	AdminPassword string // initial password of the seeded admin account
	MaxUploadMB   int64  // poster upload size cap in megabytes
	MobileWidth   int    // maximum width of the mobile poster variant
	MobileQuality int    // JPEG quality of the mobile poster variant
}

// Load reads configuration values from environment variables and returns a
// Config. The signing secret and admin credentials are enforced by must()
// and their absence causes the program to exit with a fatal log message;
// everything else falls back to defaults matching the original deployment.
func Load() Config {
	return Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          getenv("APP_PORT", "3001"),
		DBPath:        getenv("DB_PATH", "cinemash.db"),
		PostersDir:    getenv("POSTERS_DIR", "cineposters"),
		PublicDir:     getenv("PUBLIC_DIR", "public"),
		AdminDir:      getenv("ADMIN_DIR", "admin"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  getenvInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:    getenvInt("BCRYPT_COST", 10),
		AdminUsername: must("ADMIN_USERNAME"),
		AdminPassword: must("ADMIN_PASSWORD"),
		MaxUploadMB:   int64(getenvInt("MAX_UPLOAD_MB", 5)),
		MobileWidth:   getenvInt("MOBILE_MAX_WIDTH", 600),
		MobileQuality: getenvInt("MOBILE_JPEG_QUALITY", 80),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an environment variable, or a default when
// the variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value into an integer. Values
// that fail to parse fall back to the default.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
