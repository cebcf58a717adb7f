package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds the values read from the .env file. It is written once by SetupEnvFile.
var Env map[string]string

// DefaultEnvFiles are the locations searched for a .env file
var DefaultEnvFiles = []string{
	".env",          // Current directory
	"../../.env",    // From cmd/pixelproof to project root
	"../../../.env", // Fallback for deeper nesting
}

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok && val != "" {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetBool parses key as a boolean, def is used when unset or invalid
func GetBool(key string, def bool) bool {
	val, err := strconv.ParseBool(GetEnv(key, ""))
	if err != nil {
		return def
	}
	return val
}

// GetDuration parses key as a time.Duration ("10m", "90s"), def is used when unset or invalid
func GetDuration(key string, def time.Duration) time.Duration {
	val, err := time.ParseDuration(GetEnv(key, ""))
	if err != nil || val <= 0 {
		return def
	}
	return val
}

// SetupEnvFile loads the first .env file found in files (DefaultEnvFiles when empty).
// A missing file is not an error; the process then runs on OS environment variables only.
func SetupEnvFile(files ...string) error {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}

	for _, envFile := range files {
		values, err := godotenv.Read(envFile)
		if err == nil {
			Env = values
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	Env = map[string]string{}
	return nil
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
