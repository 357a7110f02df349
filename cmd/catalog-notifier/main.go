package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencatalog/catalog-notifier/internal/credential"
	"github.com/opencatalog/catalog-notifier/internal/digest"
	"github.com/opencatalog/catalog-notifier/internal/mail"
	"github.com/opencatalog/catalog-notifier/internal/model"
	"github.com/opencatalog/catalog-notifier/internal/notify"
	"github.com/opencatalog/catalog-notifier/internal/search"
	"github.com/opencatalog/catalog-notifier/internal/source"
	"github.com/opencatalog/catalog-notifier/internal/source/activity"
	"github.com/opencatalog/catalog-notifier/internal/source/savedsearch"
	"github.com/opencatalog/catalog-notifier/internal/store"
	"github.com/opencatalog/catalog-notifier/internal/timespan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "catalog-notifier",
		Short:         "Send digest email notifications for a data catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().StringVar(
		&configPath, "config", model.DefaultConfigPath(), "path to config file",
	)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newCredentialsCmd())

	return root
}

func newRunCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one notification pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotifications(cmd, *configPath, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "notify a single user by ID instead of all users")

	return cmd
}

func runNotifications(cmd *cobra.Command, configPath, userID string) error {
	ctx := cmd.Context()

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	minAge, err := timespan.Parse(cfg.Notifications.Since)
	if err != nil {
		return fmt.Errorf("invalid notifications.since %q: %w", cfg.Notifications.Since, err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	smtpCfg := cfg.SMTP
	smtpCfg.Password, err = credential.SMTPPassword(smtpCfg.Password)
	if err != nil {
		return fmt.Errorf("resolving SMTP password: %w", err)
	}

	composer := digest.NewComposer(cfg.Site.Title, cfg.Site.URL)
	executor := search.NewClient(cfg.Search.BaseURL)
	differ := savedsearch.NewDiffer(
		executor, st, cfg.Site.URL, cfg.Search.Rows, cfg.Search.IncludePrivate,
	)

	sources := []source.Source{
		activity.NewSource(st, composer),
		savedsearch.NewSource(st, differ, composer),
	}

	scheduler := notify.NewScheduler(st, mail.NewSMTPMailer(smtpCfg), sources, minAge)

	if userID != "" {
		user, err := st.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("looking up user %s: %w", userID, err)
		}
		return scheduler.RunForUser(ctx, *user)
	}

	return scheduler.RunForAll(ctx)
}

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-smtp-password",
		Short: "Read the SMTP password from stdin and store it in the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			password, err := reader.ReadString('\n')
			if err != nil && password == "" {
				return fmt.Errorf("reading password: %w", err)
			}
			password = strings.TrimRight(password, "\r\n")

			if err := credential.Set(credential.SMTPPasswordKey, password); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "SMTP password stored")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-smtp-password",
		Short: "Remove the stored SMTP password from the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return credential.Delete(credential.SMTPPasswordKey)
		},
	})

	return cmd
}
