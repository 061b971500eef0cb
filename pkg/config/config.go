package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Store   StoreConfig
	DB      DBConfig
	Dynamo  DynamoConfig
	Ledger  LedgerConfig
	Kafka   KafkaConfig
	S3      S3Config
	Audit   AuditConfig
	Metrics MetricsConfig
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

// StoreConfig elige el backend de registros y auditoría.
type StoreConfig struct {
	Driver string // memory | postgres | dynamodb
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Migrate     bool // aplica las migraciones embebidas al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// DynamoConfig tablas de DynamoDB. Endpoint vacío usa el de AWS.
type DynamoConfig struct {
	Region       string
	Endpoint     string
	RecordsTable string
	AuditTable   string
}

// LedgerConfig política de reintentos del ConcurrencyController.
type LedgerConfig struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	StoreTimeout time.Duration
}

// KafkaConfig stream de auditoría. Sin brokers no se publica.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// Enabled indica si hay brokers configurados.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// S3Config destino de exportaciones de auditoría. Sin bucket no se exporta.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	AccessKey string
	SecretKey string
}

// Enabled indica si hay bucket configurado.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// AuditConfig retención de la bitácora.
type AuditConfig struct {
	RetentionDays int
}

// MetricsConfig expone /metrics.
type MetricsConfig struct {
	Enabled bool
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

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
			Name: getString(v, "APP_NAME", "clinic-ledger"),
		},
		Log: LogConfig{Level: getString(v, "LOG_LEVEL", "info")},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "clinic-ledger"),
		},
		Store: StoreConfig{Driver: strings.ToLower(getString(v, "STORE_DRIVER", DriverMemory))},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "clinic_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		Dynamo: DynamoConfig{
			Region:       getString(v, "DYNAMO_REGION", "us-east-1"),
			Endpoint:     getString(v, "DYNAMO_ENDPOINT", ""),
			RecordsTable: getString(v, "DYNAMO_RECORDS_TABLE", "inventory_records"),
			AuditTable:   getString(v, "DYNAMO_AUDIT_TABLE", "audit_logs"),
		},
		Ledger: LedgerConfig{
			MaxAttempts:  getInt(v, "LEDGER_MAX_ATTEMPTS", 5),
			BaseBackoff:  time.Duration(getInt(v, "LEDGER_BASE_BACKOFF_MS", 20)) * time.Millisecond,
			MaxBackoff:   time.Duration(getInt(v, "LEDGER_MAX_BACKOFF_MS", 500)) * time.Millisecond,
			StoreTimeout: time.Duration(getInt(v, "LEDGER_STORE_TIMEOUT_MS", 3000)) * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(getString(v, "KAFKA_BROKERS", "")),
			AuditTopic: getString(v, "KAFKA_AUDIT_TOPIC", "inventory.audit"),
		},
		S3: S3Config{
			Bucket:    getString(v, "S3_BUCKET", ""),
			Region:    getString(v, "S3_REGION", "us-east-1"),
			Endpoint:  getString(v, "S3_ENDPOINT", ""),
			PathStyle: getBool(v, "S3_PATH_STYLE", false),
			AccessKey: getString(v, "S3_ACCESS_KEY", ""),
			SecretKey: getString(v, "S3_SECRET_KEY", ""),
		},
		Audit:   AuditConfig{RetentionDays: getInt(v, "AUDIT_RETENTION_DAYS", 365)},
		Metrics: MetricsConfig{Enabled: getBool(v, "METRICS_ENABLED", true)},
	}

	switch cfg.Store.Driver {
	case DriverMemory, DriverPostgres, DriverDynamoDB:
	default:
		return nil, fmt.Errorf("config: STORE_DRIVER inválido %q", cfg.Store.Driver)
	}
	if cfg.Ledger.MaxAttempts < 1 {
		return nil, fmt.Errorf("config: LEDGER_MAX_ATTEMPTS debe ser al menos 1")
	}
	if cfg.Audit.RetentionDays < 1 {
		return nil, fmt.Errorf("config: AUDIT_RETENTION_DAYS debe ser al menos 1")
	}
	return cfg, nil
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
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
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

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
