package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/svpddu/studentrecords/internal/app/models"
	"github.com/svpddu/studentrecords/internal/app/records"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
	"github.com/svpddu/studentrecords/internal/pkg/helpers"
	"github.com/svpddu/studentrecords/internal/pkg/validation"
	"github.com/svpddu/studentrecords/internal/seed"
)

func (a *app) promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Move every student up one class and graduate class 12",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *Session) error {
				result, err := s.Admin.Promote(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "promoted: %d\ngraduated: %d\n", result.Promoted, result.Graduated)
				return nil
			})
		},
	}
}

func (a *app) purgeYearCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "purge-year <year>",
		Short: "Delete every student admitted in the given year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := args[0]
			if !validation.IsAdmissionYear(year) {
				return apperrors.ErrInvalidYear
			}
			if !confirmed {
				return fmt.Errorf("refusing to delete the %s cohort without --yes", year)
			}
			return a.withSession(cmd.Context(), func(s *Session) error {
				deleted, err := s.Admin.PurgeYear(cmd.Context(), year)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted: %d\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")
	return cmd
}

func (a *app) seedUsersCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed-users [email...]",
		Short: "Create login accounts, defaulting to the configured seed users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *Session) error {
				emails := args
				if len(emails) == 0 {
					emails = s.SeedUsers
				}
				for _, email := range emails {
					if !validation.IsEmail(email) {
						return fmt.Errorf("invalid email %q", email)
					}
				}
				pw := password
				if pw == "" {
					pw = s.SeedPassword
				}
				created, err := seed.CreateUsers(cmd.Context(), s.Users, emails, pw, s.Logger)
				fmt.Fprintf(cmd.OutOrStdout(), "created: %d\n", created)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new accounts")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash stored for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func (a *app) currentClassCmd() *cobra.Command {
	var (
		admissionYear string
		class         int
		at            string
	)
	cmd := &cobra.Command{
		Use:   "current-class",
		Short: "Project an admission class onto the current academic session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, ok := helpers.ParseYear(admissionYear)
			if !ok {
				return apperrors.ErrInvalidYear
			}
			if class < 1 || class > models.TerminalClass {
				return fmt.Errorf("class must be between 1 and %d", models.TerminalClass)
			}
			now := a.now()
			if at != "" {
				t, err := time.Parse("2006-01-02", at)
				if err != nil {
					return fmt.Errorf("invalid --at date %q: %w", at, err)
				}
				now = t
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(records.CurrentClass(year, class, now)))
			return nil
		},
	}
	cmd.Flags().StringVar(&admissionYear, "admission-year", "", "Four digit admission year")
	cmd.Flags().IntVar(&class, "class", 0, "Class the student was admitted into")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate on this date (YYYY-MM-DD) instead of today")
	_ = cmd.MarkFlagRequired("admission-year")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}
