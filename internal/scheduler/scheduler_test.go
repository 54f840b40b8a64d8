package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/config"
)

type fakeAdmin struct {
	calls int
	err   error
}

func (f *fakeAdmin) Promote(ctx context.Context) (models.PromotionResult, error) {
	f.calls++
	if f.err != nil {
		return models.PromotionResult{}, f.err
	}
	return models.PromotionResult{Promoted: 3, Graduated: 1}, nil
}

func (f *fakeAdmin) PurgeYear(ctx context.Context, year string) (int64, error) {
	return 0, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		spec        string
		wantErr     bool
		wantEnabled bool
	}{
		{name: "disabled ignores spec", enabled: false, spec: "not a spec", wantEnabled: false},
		{name: "enabled with valid spec", enabled: true, spec: "0 0 1 4 *", wantEnabled: true},
		{name: "enabled with invalid spec", enabled: true, spec: "every tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Scheduler.Enabled = tt.enabled
			cfg.Scheduler.PromotionSpec = tt.spec

			s, err := New(cfg, &fakeAdmin{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", s.Enabled(), tt.wantEnabled)
			}
			s.Start()
			s.Stop(context.Background())
		})
	}
}

func TestRunPromotion(t *testing.T) {
	t.Run("calls admin service", func(t *testing.T) {
		admin := &fakeAdmin{}
		s, err := New(&config.Config{}, admin)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.runPromotion()
		if admin.calls != 1 {
			t.Errorf("Promote called %d times, want 1", admin.calls)
		}
	})

	t.Run("survives failure", func(t *testing.T) {
		admin := &fakeAdmin{err: errors.New("db down")}
		s, _ := New(&config.Config{}, admin)
		s.runPromotion()
		if admin.calls != 1 {
			t.Errorf("Promote called %d times, want 1", admin.calls)
		}
	})
}

func TestCronLogger_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	cl := cronLogger{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	cl.Info("skip", "entry", 1)
	cl.Error(errors.New("boom"), "panic", "job", "promotion")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
	}

	var info, failure map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("decode info line: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("decode error line: %v", err)
	}

	if info["level"] != "debug" || info["message"] != "skip" || info["entry"] != float64(1) {
		t.Errorf("unexpected info entry: %v", info)
	}
	if failure["level"] != "error" || failure["error"] != "boom" || failure["job"] != "promotion" {
		t.Errorf("unexpected error entry: %v", failure)
	}
}
