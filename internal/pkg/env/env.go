package env

import (
	"os"

	"github.com/joho/godotenv"
)

// vars holds the key/value pairs read from a .env file, if one was found.
var vars map[string]string

// GetEnv resolves key from the loaded .env file first, then the process
// environment, then the given default. config.Load is the only business-side
// caller; components receive config structs instead of reading keys here.
func GetEnv(key, def string) string {
	if val, ok := vars[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the nearest .env file, walking up from the working
// directory so the binary works from the repo root and from cmd/ during
// development. Deployed containers carry configuration in the process
// environment, so a missing file is not an error.
func SetupEnvFile() {
	candidates := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	for _, envFile := range candidates {
		if loaded, err := godotenv.Read(envFile); err == nil {
			vars = loaded
			return
		}
	}
	vars = map[string]string{}
}
