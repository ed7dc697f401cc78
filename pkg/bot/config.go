package bot

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"wa-launcher/pkg/phone"
)

// ErrNoNumber means no WhatsApp number was given on the command line or in
// the environment, and QR login was not enabled either.
var ErrNoNumber = errors.New("no WhatsApp number configured")

type Config struct {
	// Number is the normalized international phone number used to request a
	// pairing code. Empty only when AllowQR is set.
	Number      string
	CountryCode string
	DBPath      string
	DeviceName  string

	// AllowQR enables the QR-scan login flow when no number is configured.
	AllowQR bool

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// LoadConfig reads the .env file (if any), the environment, and the CLI
// arguments. The first argument wins over WA_NUMBER.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		CountryCode:   getEnv("WA_COUNTRY_CODE", phone.DefaultCountryCode),
		DBPath:        getEnv("WA_DB_PATH", "data/wa-launcher.db"),
		DeviceName:    getEnv("WA_DEVICE_NAME", "wa-launcher"),
		AllowQR:       os.Getenv("WA_ALLOW_QR") == "1",
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
	}

	raw := os.Getenv("WA_NUMBER")
	if len(args) > 0 && args[0] != "" {
		raw = args[0]
	}
	if raw == "" {
		if cfg.AllowQR {
			return cfg, nil
		}
		return nil, ErrNoNumber
	}

	number, err := phone.Normalize(raw, cfg.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("invalid WhatsApp number %q: %w", raw, err)
	}
	cfg.Number = number
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
