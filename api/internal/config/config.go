package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port             string
	TelegramBotToken string
	WebhookURL       string
	// ExtractAPIKey включает POST /v1/extract; пусто — эндпоинт выключен.
	ExtractAPIKey string

	// Доступ: пустой список = никто не авторизован.
	AuthorizedUsers []int64
	Timezone        string

	LLMEngine      string
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	LLMTemperature float32
	PromptDir      string

	GoogleCredentialsFile string
	SpreadsheetID         string
	WorksheetName         string
	DriveFolderID         string
	DrivePublicLinks      bool

	Rooms          []string
	PriceOptions   []string
	PaymentOptions []string

	DatabaseURL   string
	CacheMaxAge   time.Duration
	ScoreThresh   int
	ScoreMinLen   int
	EmergencyIDLo int
	EmergencyIDHi int

	LogLevel  string
	LogFormat string
}

func mustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("env %s=%q is not an int, using %d", k, v, def)
		return def
	}
	return n
}

func getEnvBool(k string, def bool) bool {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("env %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}

// getEnvList — список через запятую, пустые элементы отбрасываются.
func getEnvList(k string, def []string) []string {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// ParseUserIDs разбирает AUTHORIZED_USERS; нечисловые элементы пропускаются.
func ParseUserIDs(raw string) []int64 {
	var out []int64
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Warnf("AUTHORIZED_USERS: skip %q", p)
			continue
		}
		out = append(out, id)
	}
	return out
}

func defaultRooms() []string {
	rooms := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		rooms = append(rooms, strconv.Itoa(i))
	}
	return rooms
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("load .env: %v", err)
	}
}

// Load читает .env (если есть) и переменные окружения.
func Load() *Config {
	loadDotenv()
	c := &Config{
		Port:             getEnv("PORT", "8080"),
		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		ExtractAPIKey:    getEnv("EXTRACT_API_KEY", ""),

		AuthorizedUsers: ParseUserIDs(getEnv("AUTHORIZED_USERS", "")),
		Timezone:        getEnv("TIMEZONE", "America/Lima"),

		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "credentials.json"),
		SpreadsheetID:         mustEnv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		WorksheetName:         getEnv("GOOGLE_SHEETS_WORKSHEET_NAME", "Registros"),
		DriveFolderID:         mustEnv("GOOGLE_DRIVE_FOLDER_ID"),
		DrivePublicLinks:      getEnvBool("DRIVE_PUBLIC_LINKS", true),

		Rooms:          getEnvList("ROOMS", defaultRooms()),
		PriceOptions:   getEnvList("PRICE_OPTIONS", []string{"S/25", "S/30", "S/40"}),
		PaymentOptions: getEnvList("PAYMENT_OPTIONS", []string{"Efectivo", "Yape", "Plin", "Transferencia"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	c.loadExtraction()
	return c
}

// LoadExtraction — только настройки распознавания: для утилиты командной строки,
// которой не нужны Telegram и Google.
func LoadExtraction() *Config {
	loadDotenv()
	c := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	c.loadExtraction()
	return c
}

func (c *Config) loadExtraction() {
	temp, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.1"), 32)
	if err != nil {
		temp = 0.1
	}
	c.LLMEngine = strings.ToLower(getEnv("LLM_ENGINE", "gemini"))
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	c.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	c.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-4o-mini")
	c.LLMTemperature = float32(temp)
	c.PromptDir = getEnv("PROMPT_DIR", "")

	c.DatabaseURL = getEnv("DATABASE_URL", "")
	c.CacheMaxAge = getEnvDuration("CACHE_MAX_AGE", 30*24*time.Hour)
	c.ScoreThresh = getEnvInt("SCORE_THRESHOLD", 2)
	c.ScoreMinLen = getEnvInt("SCORE_MIN_LENGTH", 20)
	c.EmergencyIDLo = getEnvInt("EMERGENCY_ID_MIN_DIGITS", 7)
	c.EmergencyIDHi = getEnvInt("EMERGENCY_ID_MAX_DIGITS", 10)
}

// Validate проверяет согласованность настроек, которые нельзя проверить по одной переменной.
func (c *Config) Validate() error {
	errs := []error{c.ValidateExtraction()}
	if len(c.AuthorizedUsers) == 0 {
		errs = append(errs, errors.New("AUTHORIZED_USERS is empty: nobody can use the bot"))
	}
	if len(c.Rooms) == 0 {
		errs = append(errs, errors.New("ROOMS is empty"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) ValidateExtraction() error {
	var errs []error
	switch c.LLMEngine {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is empty"))
		}
	case "openai", "gpt":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is empty"))
		}
	default:
		errs = append(errs, errors.New("LLM_ENGINE must be gemini or openai"))
	}
	if c.EmergencyIDLo < 1 || c.EmergencyIDHi < c.EmergencyIDLo {
		errs = append(errs, errors.New("EMERGENCY_ID_MIN_DIGITS/MAX_DIGITS out of range"))
	}
	return errors.Join(errs...)
}

// SetupLogging настраивает глобальный logrus по LOG_LEVEL/LOG_FORMAT.
func (c *Config) SetupLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
