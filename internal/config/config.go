// Package config загружает конфигурацию maskctl.
//
// Источники в порядке приоритета: флаги командной строки, переменные
// окружения MASKCTL_*, файл конфигурации (maskctl.yaml/json/toml),
// значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix — префикс переменных окружения.
const EnvPrefix = "MASKCTL"

// ErrMissingField — не задано обязательное поле.
var ErrMissingField = errors.New("missing required config field")

// Config — конфигурация CLI.
type Config struct {
	EngineURL  string `mapstructure:"engine-url"`
	APIVersion string `mapstructure:"api-version"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`

	PollInterval time.Duration `mapstructure:"poll-interval"`
	MaxWait      time.Duration `mapstructure:"max-wait"`
	HTTPTimeout  time.Duration `mapstructure:"http-timeout"`
	PageSize     int           `mapstructure:"page-size"`

	// RequireRefreshSuccess — не запускать job, если refresh ruleset
	// завершился не SUCCEEDED. По умолчанию выключено.
	RequireRefreshSuccess bool `mapstructure:"require-refresh-success"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	MetricsAddr    string `mapstructure:"metrics-addr"`
	AMQPURL        string `mapstructure:"amqp-url"`
	EventsExchange string `mapstructure:"events-exchange"`

	JSON bool `mapstructure:"json"`
}

// engineFields — поля, без которых нельзя обратиться к engine.
var engineFields = []string{
	"engine-url",
	"username",
	"password",
}

// field: default value
var defaults = map[string]any{
	"engine-url":              "",
	"api-version":             "v5.1.33",
	"username":                "",
	"password":                "",
	"poll-interval":           10 * time.Second,
	"max-wait":                time.Duration(0),
	"http-timeout":            30 * time.Second,
	"page-size":               100,
	"require-refresh-success": false,
	"log-level":               "INFO",
	"log-format":              "text",
	"metrics-addr":            "",
	"amqp-url":                "",
	"events-exchange":         "maskctl.events",
	"json":                    false,
}

// RegisterFlags добавляет persistent флаги для всех ключей конфигурации.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default ./maskctl.yaml or ~/.maskctl/maskctl.yaml)")
	fs.String("engine-url", "", "Masking engine base URL, e.g. http://engine.example.com")
	fs.String("api-version", "v5.1.33", "Masking API version")
	fs.String("username", "", "Engine username")
	fs.String("password", "", "Engine password")
	fs.Duration("poll-interval", 10*time.Second, "Interval between status polls")
	fs.Duration("max-wait", 0, "Maximum time to wait for an operation (0 = unbounded)")
	fs.Duration("http-timeout", 30*time.Second, "HTTP request timeout")
	fs.Int("page-size", 100, "Page size for list requests")
	fs.Bool("require-refresh-success", false, "Do not run the job when the ruleset refresh did not succeed")
	fs.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.String("log-format", "text", "Log format (text, json)")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	fs.String("amqp-url", "", "Publish workflow events to RabbitMQ at this URL")
	fs.String("events-exchange", "maskctl.events", "RabbitMQ exchange for workflow events")
	fs.Bool("json", false, "Output in JSON format")
}

// Load читает конфигурацию из флагов, окружения и файла.
//
// configFile — явный путь к файлу; пустая строка включает поиск
// maskctl.* в текущей директории и в ~/.maskctl. Отсутствие файла
// при поиске ошибкой не считается.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("maskctl")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".maskctl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	cfg.EngineURL = strings.TrimRight(cfg.EngineURL, "/")

	return &cfg, nil
}

// ValidateEngine проверяет поля, нужные для работы с engine.
func (c *Config) ValidateEngine() error {
	values := map[string]string{
		"engine-url": c.EngineURL,
		"username":   c.Username,
		"password":   c.Password,
	}

	var missing []string
	for _, field := range engineFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page-size must be positive, got %d", c.PageSize)
	}
	return nil
}
