package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Draft   DraftConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// LogConfig nivel de log (trace, debug, info, warn, error).
type LogConfig struct {
	Level string
}

// HTTPConfig configuración del servidor HTTP local.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Drivers de almacenamiento soportados.
const (
	StorageDriverFile   = "file"
	StorageDriverMemory = "memory"
)

// StorageConfig almacén local del borrador.
type StorageConfig struct {
	Driver string // file | memory
	Dir    string // directorio para el driver file
}

// DraftConfig parámetros del borrador.
type DraftConfig struct {
	Key             string        // clave única del registro en el almacén
	Debounce        time.Duration // espera antes de persistir
	DefaultCurrency string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, STORAGE_DIR, DRAFT_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "invoice-builder"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getString(v, "STORAGE_DRIVER", StorageDriverFile)),
			Dir:    getString(v, "STORAGE_DIR", "./.invoice-drafts"),
		},
		Draft: DraftConfig{
			Key:             getString(v, "DRAFT_KEY", "invoiceDraft"),
			Debounce:        time.Duration(getInt(v, "DRAFT_DEBOUNCE_MS", 1000)) * time.Millisecond,
			DefaultCurrency: strings.ToUpper(getString(v, "DRAFT_DEFAULT_CURRENCY", "INR")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa combinaciones inválidas.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverFile, StorageDriverMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER %q no soportado", c.Storage.Driver)
	}
	if c.Storage.Driver == StorageDriverFile && c.Storage.Dir == "" {
		return fmt.Errorf("config: STORAGE_DIR requerido con driver file")
	}
	if c.Draft.Key == "" {
		return fmt.Errorf("config: DRAFT_KEY vacío")
	}
	if c.Draft.Debounce <= 0 {
		return fmt.Errorf("config: DRAFT_DEBOUNCE_MS debe ser mayor que cero")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
