package config

import "fmt"

// Catalog source kinds.
const (
	SourceCSV           = "csv"
	SourcePostgres      = "postgres"
	SourceElasticsearch = "elasticsearch"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Catalog  CatalogConfig           `mapstructure:"catalog"`
	Database DatabaseConfig          `mapstructure:"database"`
	Matching MatchingConfig          `mapstructure:"matching"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// CatalogConfig selects where motorcycle records come from and how long a
// loaded snapshot is cached.
type CatalogConfig struct {
	Source   string `mapstructure:"source"`
	CSVPath  string `mapstructure:"csv_path"`
	MinYear  int    `mapstructure:"min_year"`
	Index    string `mapstructure:"index"`
	Table    string `mapstructure:"table"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, 0 disables the cache

	// RefreshInterval is how long a worker keeps a snapshot in memory
	// before loading again, in seconds. 0 keeps the first load.
	RefreshInterval int `mapstructure:"refresh_interval"`
}

// MatchingConfig tunes the catalog filter.
type MatchingConfig struct {
	UnparsableFields string `mapstructure:"unparsable_fields"` // reject | pass
	MaxResults       int    `mapstructure:"max_results"`       // 0 returns every match
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the explicit URL or else the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
