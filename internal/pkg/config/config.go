// Package config предоставляет управление конфигурацией приложения
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// API содержит конфигурацию клиента удаленного API маркетплейса
type API struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Gateway содержит конфигурацию локального HTTP-шлюза
type Gateway struct {
	Host                   string `json:"host" yaml:"host"`
	Port                   int    `json:"port" yaml:"port"`
	ReadTimeoutSeconds     int    `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// Storage содержит пути локального хранения
type Storage struct {
	TokenFile    string `json:"token_file" yaml:"token_file"`
	DownloadsDir string `json:"downloads_dir" yaml:"downloads_dir"`
}

// UI содержит конфигурацию пользовательского интерфейса
type UI struct {
	// Origin — адрес веб-интерфейса, используемый при построении ссылок на корзины.
	Origin string `json:"origin" yaml:"origin"`
	// SearchDebounceMillis — задержка поиска получателей после последнего ввода.
	SearchDebounceMillis int `json:"search_debounce_ms" yaml:"search_debounce_ms"`
}

// Chats содержит конфигурацию чатов
type Chats struct {
	CacheTTLSeconds   int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	MarkReadDelayMill int `json:"mark_read_delay_ms" yaml:"mark_read_delay_ms"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
}

// Config содержит конфигурацию приложения
type Config struct {
	API     API     `json:"api" yaml:"api"`
	Gateway Gateway `json:"gateway" yaml:"gateway"`
	Storage Storage `json:"storage" yaml:"storage"`
	UI      UI      `json:"ui" yaml:"ui"`
	Chats   Chats   `json:"chats" yaml:"chats"`
	Logging Logging `json:"logging" yaml:"logging"`
}

// LoadConfig загружает конфигурацию приложения из переменных окружения, .env файла или config.yml
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла, если он существует
	if err := godotenv.Load(); err != nil {
		// Отсутствие .env файла не ошибка: полагаемся на окружение или config.yml
	}

	cfg := defaultConfig()

	if err := loadFromYAML("config.yml", cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	return cfg, nil
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL:        DefaultAPIBaseURL,
			TimeoutSeconds: DefaultAPITimeoutSeconds,
		},
		Gateway: Gateway{
			Host:                   DefaultGatewayHost,
			Port:                   DefaultGatewayPort,
			ReadTimeoutSeconds:     DefaultReadTimeoutSeconds,
			WriteTimeoutSeconds:    DefaultWriteTimeoutSeconds,
			ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
		},
		Storage: Storage{
			TokenFile:    DefaultTokenFile,
			DownloadsDir: DefaultDownloadsDir,
		},
		UI: UI{
			Origin:               DefaultUIOrigin,
			SearchDebounceMillis: DefaultSearchDebounceMillis,
		},
		Chats: Chats{
			CacheTTLSeconds:   DefaultChatCacheTTLSeconds,
			MarkReadDelayMill: DefaultMarkReadDelayMillis,
		},
		Logging: Logging{
			Level: DefaultLogLevel,
		},
	}
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg.
// Отсутствие файла не является ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// applyEnv накладывает переменные окружения поверх cfg
func applyEnv(cfg *Config) {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_HOST"); v != "" {
		cfg.Gateway.Host = v
	}
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("TOKEN_FILE"); v != "" {
		cfg.Storage.TokenFile = v
	}
	if v := os.Getenv("DOWNLOADS_DIR"); v != "" {
		cfg.Storage.DownloadsDir = v
	}
	if v := os.Getenv("UI_ORIGIN"); v != "" {
		cfg.UI.Origin = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Address возвращает адрес шлюза в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url не может быть пустым")
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds должно быть положительным")
	}

	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port должен быть действительным номером порта (1-65535)")
	}

	if c.Gateway.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("gateway.shutdown_timeout_seconds должно быть положительным")
	}

	if c.Storage.TokenFile == "" {
		return fmt.Errorf("storage.token_file не может быть пустым")
	}

	if c.Storage.DownloadsDir == "" {
		return fmt.Errorf("storage.downloads_dir не может быть пустым")
	}

	if c.UI.Origin == "" {
		return fmt.Errorf("ui.origin не может быть пустым")
	}

	if c.Chats.CacheTTLSeconds <= 0 {
		return fmt.Errorf("chats.cache_ttl_seconds должно быть положительным")
	}

	if c.Chats.MarkReadDelayMill < 0 {
		return fmt.Errorf("chats.mark_read_delay_ms должно быть неотрицательным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	return nil
}
