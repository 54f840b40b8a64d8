package db

import (
	"testing"
	"time"

	"github.com/svpddu/studentrecords/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"
	cfg.Database.User = "records"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "students"
	cfg.Database.MaxOpenConns = 8
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxLifetime = "30m"

	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pc.ConnConfig.Host != "db.internal" || pc.ConnConfig.Port != 5433 {
		t.Errorf("host/port = %s:%d", pc.ConnConfig.Host, pc.ConnConfig.Port)
	}
	if pc.ConnConfig.Database != "students" || pc.ConnConfig.User != "records" {
		t.Errorf("database/user = %s/%s", pc.ConnConfig.Database, pc.ConnConfig.User)
	}
	if pc.MaxConns != 8 || pc.MinConns != 2 {
		t.Errorf("conns = %d/%d, want 8/2", pc.MaxConns, pc.MinConns)
	}
	if pc.MaxConnLifetime != 30*time.Minute {
		t.Errorf("lifetime = %s, want 30m", pc.MaxConnLifetime)
	}
}

func TestPoolConfig_BadLifetimeFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.DBName = "students"
	cfg.Database.ConnMaxLifetime = "forever"

	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pc.MaxConnLifetime != time.Hour {
		t.Errorf("lifetime = %s, want 1h", pc.MaxConnLifetime)
	}
}
