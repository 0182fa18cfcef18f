package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CASDOOR_ENDPOINT", "http://casdoor.local")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want default 25", cfg.Database.MaxOpenConns)
	}
}

func TestLoadConfig_RequiresCasdoor(t *testing.T) {
	t.Setenv("CASDOOR_ENDPOINT", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without CASDOOR_ENDPOINT")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "url wins",
			cfg:  DatabaseConfig{URL: "postgres://u:p@db/exams", Host: "ignored"},
			want: "postgres://u:p@db/exams",
		},
		{
			name: "parts",
			cfg:  DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "exams", SSLMode: "disable"},
			want: "host=db port=5432 user=u password=p dbname=exams sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportConfig_Location(t *testing.T) {
	if loc := (ExportConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("invalid zone should fall back to UTC, got %v", loc)
	}
	if loc := (ExportConfig{}).Location(); loc != time.UTC {
		t.Errorf("empty zone should be UTC, got %v", loc)
	}
}
