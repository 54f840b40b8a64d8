// Package cli implements svctl, the operator command line for the student store.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/bootstrap"
)

// Session is what the store-backed commands operate on
type Session struct {
	Admin        services.AdminService
	Users        repositories.UserRepository
	SeedUsers    []string
	SeedPassword string
	Logger       zerolog.Logger
	Close        func(ctx context.Context) error
}

// Opener connects to the store described by the config at configPath
type Opener func(ctx context.Context, configPath string) (*Session, error)

// OpenContainer is the production Opener
func OpenContainer(ctx context.Context, configPath string) (*Session, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	c, err := bootstrap.NewContainer(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &Session{
		Admin:        c.AdminService,
		Users:        c.Repos.Users,
		SeedUsers:    cfg.Seed.Users,
		SeedPassword: cfg.Seed.DefaultPassword,
		Logger:       lgr,
		Close:        c.Close,
	}, nil
}

type app struct {
	open       Opener
	now        func() time.Time
	configPath string
}

// NewRootCommand builds the svctl command tree. now is the clock used by
// date dependent commands.
func NewRootCommand(open Opener, now func() time.Time) *cobra.Command {
	a := &app{open: open, now: now}

	root := &cobra.Command{
		Use:           "svctl",
		Short:         "Operator tools for the student records service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to the YAML config file")

	root.AddCommand(
		a.promoteCmd(),
		a.purgeYearCmd(),
		a.seedUsersCmd(),
		hashPasswordCmd(),
		a.currentClassCmd(),
	)
	return root
}

// withSession opens a session, runs fn and always closes the session
func (a *app) withSession(ctx context.Context, fn func(s *Session) error) (err error) {
	s, err := a.open(ctx, a.configPath)
	if err != nil {
		return err
	}
	defer func() {
		if s.Close == nil {
			return
		}
		if closeErr := s.Close(context.Background()); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}
