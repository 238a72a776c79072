package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoolConfigParse(t *testing.T) {
	cfg := PoolConfig{
		DatabaseURL:       "postgres://app:pw@db.internal:5433/transferhub?sslmode=disable",
		MaxConns:          8,
		MinConns:          2,
		ConnectTimeout:    3 * time.Second,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: 15 * time.Second,
	}

	pc, err := cfg.parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pc.MaxConns != 8 || pc.MinConns != 2 {
		t.Fatalf("unexpected pool bounds %d/%d", pc.MaxConns, pc.MinConns)
	}
	if pc.ConnConfig.ConnectTimeout != 3*time.Second || pc.MaxConnIdleTime != time.Minute || pc.HealthCheckPeriod != 15*time.Second {
		t.Fatal("timeouts not applied")
	}
	if pc.ConnConfig.Host != "db.internal" || pc.ConnConfig.Port != 5433 {
		t.Fatalf("unexpected target %s:%d", pc.ConnConfig.Host, pc.ConnConfig.Port)
	}
	if pc.ConnConfig.RuntimeParams["application_name"] != applicationName {
		t.Fatalf("expected application_name to be set, got %v", pc.ConnConfig.RuntimeParams)
	}
}

func TestPoolConfigParse_RespectsURLParams(t *testing.T) {
	pc, err := PoolConfig{
		DatabaseURL: "postgres://localhost/transferhub?application_name=ops-shell",
		MaxConns:    1,
		MinConns:    4,
	}.parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pc.ConnConfig.RuntimeParams["application_name"] != "ops-shell" {
		t.Fatalf("url application_name overwritten: %v", pc.ConnConfig.RuntimeParams)
	}
	if pc.MinConns != 1 {
		t.Fatalf("expected min conns clamped to max, got %d", pc.MinConns)
	}
}

func TestNewPoolWithConfig_BadURL(t *testing.T) {
	if _, err := NewPoolWithConfig(context.Background(), PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewPoolWithConfig_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewPoolWithConfig(ctx, PoolConfig{
		DatabaseURL:    "postgres://nobody@127.0.0.1:1/none?sslmode=disable",
		MaxConns:       1,
		ConnectTimeout: time.Second,
	})
	if err == nil {
		t.Fatal("expected ping to fail")
	}
}

func TestSourceURL(t *testing.T) {
	if got := sourceURL("migrations"); got != "file://migrations" {
		t.Fatalf("unexpected source %q", got)
	}
	if got := sourceURL("file:///srv/migrations"); got != "file:///srv/migrations" {
		t.Fatalf("expected file url kept, got %q", got)
	}
}

func TestRunMigrations_RequiresURL(t *testing.T) {
	if err := RunMigrations("", "migrations", zerolog.Nop()); err == nil {
		t.Fatal("expected error without database url")
	}
}
