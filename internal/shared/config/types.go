package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	ToAddress    string `mapstructure:"to_address"`
}

// FleetConfig holds tuning for the sync, health and rotation passes.
type FleetConfig struct {
	SyncIntervalMinutes   int `mapstructure:"sync_interval_minutes"`
	HealthIntervalMinutes int `mapstructure:"health_interval_minutes"`
	PanelTimeoutSeconds   int `mapstructure:"panel_timeout_seconds"`
	FailureThreshold      int `mapstructure:"failure_threshold"`
	LeaseTTLSeconds       int `mapstructure:"lease_ttl_seconds"`
}

func (f *FleetConfig) SyncInterval() time.Duration {
	return time.Duration(f.SyncIntervalMinutes) * time.Minute
}

func (f *FleetConfig) HealthInterval() time.Duration {
	return time.Duration(f.HealthIntervalMinutes) * time.Minute
}

func (f *FleetConfig) PanelTimeout() time.Duration {
	return time.Duration(f.PanelTimeoutSeconds) * time.Second
}

func (f *FleetConfig) LeaseTTL() time.Duration {
	return time.Duration(f.LeaseTTLSeconds) * time.Second
}
