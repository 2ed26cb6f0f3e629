package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Secrets are credentials read from the environment, never from the config file.
type Secrets struct {
	OpenAIAPIKey     string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	RedisUsername    string
	RedisPassword    string
	DatabaseURL      string
}

// LoadSecrets reads secrets from the environment after loading the given
// dotenv files (".env" when none are given). Missing files are ignored and
// variables already set in the environment win over file values.
func LoadSecrets(files ...string) Secrets {
	_ = godotenv.Load(files...)

	return Secrets{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),
		RedisUsername:    os.Getenv("REDIS_USERNAME"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
	}
}
