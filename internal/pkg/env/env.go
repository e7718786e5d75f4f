package env

import (
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv prefers values from the loaded .env file over the process
// environment.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found. Containers usually pass
// everything through the process environment, so a missing file is fine.
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../../.env",    // from cmd/pointsbridge
		"../../../.env",
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			log.Infof("Loaded environment from %s", envFile)
			return
		}
	}

	Env = map[string]string{}
	log.Info("No .env file found, using process environment")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
