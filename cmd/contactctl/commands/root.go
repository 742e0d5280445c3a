package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/config"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/logging"
	"github.com/JonMunkholm/contactbook/internal/store"
)

var (
	owner   string
	envFile string

	st      *store.Store
	service *core.Service
)

// Execute runs the root command. Logs go to stderr; results go to stdout.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Import and inspect contacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			owner = resolveOwner(owner)
			if owner == "" {
				return fmt.Errorf("owner required (--owner or CONTACTCTL_OWNER)")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			st, err = store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			service = core.NewService(st,
				core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
				core.WithImportTimeout(cfg.Import.Timeout),
			)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if st == nil {
				return nil
			}
			return st.Close()
		},
	}

	root.PersistentFlags().StringVar(&owner, "owner", "", "owner id to act as (default $CONTACTCTL_OWNER)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	root.AddCommand(importCmd(), listCmd(), statsCmd(), tagsCmd(), purgeCmd())

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", core.FormatUserError(err))
		fmt.Fprintln(root.ErrOrStderr(), "detail:", err)
	}
	return err
}

// loadEnvFile applies path to the environment without overriding variables
// that are already set. Only a missing file is tolerated.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveOwner prefers the flag and falls back to CONTACTCTL_OWNER, which
// may have come from the env file.
func resolveOwner(flag string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("CONTACTCTL_OWNER"))
}

// printJSON writes v indented to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
