package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultJobOrder is the historical canonical display order for hub batch
// jobs. Operators extend or replace it in the config file; jobs missing from
// the list are omitted from itemized views but still counted in totals.
var DefaultJobOrder = []string{
	"Party", "Party Relationship", "Party Source ID", "Party Status", "Party Postal Address",
	"Postal Address", "Party Electronic Address", "Party Phone Communication", "STG_PARTY",
	"STG_PARTY_REL", "Staging Party Source ID", "STG_PARTY_STATUS", "STG_PARTY_POSTAL_ADD",
	"STG_POSTAL_ADD", "STG_PARTY_ETRC_ADD", "STG_PARTY_PH_COMM", "STG_PARTY_WD",
	"STG_PARTY_REL_WD", "S_PARTY_SOURCE_ID_WD", "STG_PARTY_STATUS_WD", "STG_PARTY_PSTL_ADD_WD",
	"STG_PSTL_ADD_WD", "STG_PARTY_ERTC_ADD_WD", "STG_PARTY_PH_COMM_WD", "STG_PARTY_AD",
	"STG_PARTY_REL_AD", "S_PARTY_SOURCE_ID_AD", "STG_PARTY_STATUS_AD", "STG_PARTY_PSTL_ADD_AD",
	"STG_PSTL_ADD_AD", "STG_PARTY_ETRC_ADD_AD", "STG_PARTY_PH_COMM_AD",
}

// DefaultJobGroups is the historical hub job-group filter
var DefaultJobGroups = []string{
	"StgBatchGroupSAP", "BOBatchGroupAD", "StgBatchGroupAD",
	"BOBatchGroupSap", "TokenMatchMergeGrp",
	"BOBatchGroup_SRC_ID_SAPNO_FLAG_LDG_STG_BO",
	"StgBatchGroupWorkday", "BOBatchGroupWorkday",
}

// SourceConfig describes one repository database connection
type SourceConfig struct {
	Type      string   `mapstructure:"type" yaml:"type"`
	DSN       string   `mapstructure:"dsn" yaml:"dsn"`
	Folder    string   `mapstructure:"folder" yaml:"folder,omitempty"`
	JobGroups []string `mapstructure:"job_groups" yaml:"job_groups,omitempty"`
}

// ServiceConfig describes one environment's integration-service status command
type ServiceConfig struct {
	Environment string   `mapstructure:"environment" yaml:"environment"`
	Command     string   `mapstructure:"command" yaml:"command"`
	Args        []string `mapstructure:"args" yaml:"args,omitempty"`
}

// AppServerConfig describes one environment's management API endpoint
type AppServerConfig struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	URL         string `mapstructure:"url" yaml:"url"`
	Username    string `mapstructure:"username" yaml:"username"`
	Password    string `mapstructure:"password" yaml:"password"`
	SkipVerify  bool   `mapstructure:"skip_verify" yaml:"skip_verify,omitempty"`
}

// WebhookConfig holds the two chat targets: the terse notification channel
// and the detailed post channel
type WebhookConfig struct {
	Chat string `mapstructure:"chat" yaml:"chat"`
	Post string `mapstructure:"post" yaml:"post"`
}

// DashboardConfig holds the HTTP server settings. PasswordHash is a bcrypt
// hash; leave User empty to disable authentication.
type DashboardConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	User         string `mapstructure:"user" yaml:"user,omitempty"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`

	// Optional TLS serving; both must be set together
	CertFile string `mapstructure:"cert_file" yaml:"cert_file,omitempty"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file,omitempty"`
}

// UsageConfig maps environment aliases to their usage CSV files
type UsageConfig struct {
	OutputFile string            `mapstructure:"output_file" yaml:"output_file"`
	Files      map[string]string `mapstructure:"files" yaml:"files,omitempty"`
}

// Config is the process-wide configuration, constructed once at startup and
// passed by reference into each component. Pure logic never reads it
// ambiently.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" yaml:"log_json"`

	// Daily notification time, 24h "HH:MM" local
	ScheduleAt string `mapstructure:"schedule_at" yaml:"schedule_at"`

	ProbeTimeout    time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" yaml:"delivery_timeout"`

	Webhooks WebhookConfig `mapstructure:"webhooks" yaml:"webhooks"`

	ETLSource SourceConfig `mapstructure:"etl_source" yaml:"etl_source"`
	HubSource SourceConfig `mapstructure:"hub_source" yaml:"hub_source"`

	Services   []ServiceConfig   `mapstructure:"services" yaml:"services"`
	AppServers []AppServerConfig `mapstructure:"app_servers" yaml:"app_servers"`

	JobOrder []string `mapstructure:"job_order" yaml:"job_order"`

	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Usage     UsageConfig     `mapstructure:"usage" yaml:"usage"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:        "INFO",
		ScheduleAt:      "06:00",
		ProbeTimeout:    15 * time.Second,
		DeliveryTimeout: 15 * time.Second,
		ETLSource:       SourceConfig{Type: "sqlite", DSN: "etl-replica.db"},
		HubSource:       SourceConfig{Type: "sqlite", DSN: "hub-replica.db", JobGroups: DefaultJobGroups},
		JobOrder:        DefaultJobOrder,
		Dashboard:       DashboardConfig{Addr: ":8050"},
		Usage:           UsageConfig{OutputFile: "usage.csv"},
	}
}

// Load reads configuration from the given file (or the default search
// paths when empty) and the OPSMON_* environment, layered over Default.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("opsmon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/opsmon")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.opsmon")
		}
	}

	v.SetEnvPrefix("OPSMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults plus environment; a
		// malformed or explicitly named one is a hard error.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants a cycle depends on
func (c *Config) Validate() error {
	if _, _, err := ParseClock(c.ScheduleAt); err != nil {
		return fmt.Errorf("invalid schedule_at %q: %w", c.ScheduleAt, err)
	}
	if c.ProbeTimeout < 0 || c.DeliveryTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// ParseClock parses a 24h "HH:MM" time of day
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("out of range")
	}
	return hour, minute, nil
}

// WriteStarter writes a commented starter config to the given path
func WriteStarter(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to render starter config: %w", err)
	}
	header := []byte("# opsmon configuration\n# Values may also be set via OPSMON_* environment variables.\n")
	return os.WriteFile(path, append(header, data...), 0644)
}
