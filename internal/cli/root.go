package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/config"
	"github.com/kispace-io/appspace/internal/log"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagRegistry string
	flagCache    string
	flagNoCache  bool
	flagLogLevel string
	projectDir   string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` acquires workbench extensions from an Open VSX registry or
straight from GitHub, caches the unpacked packages locally and registers their
contributed commands with the extension host.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config commands manage the file themselves and need no services.
		if cmd.Parent() == configCmd || cmd == versionCmd {
			return nil
		}
		e, err := newEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		env = e
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env == nil {
			return nil
		}
		err := env.Close(cmd.Context())
		env = nil
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRegistry, "registry", "", "Registry API base URL (overrides "+config.KeyRegistryURL+")")
	pf.StringVar(&flagCache, "cache", "", "Package cache URL: sqlite://path, file://dir or mem://localhost/dir (overrides "+config.KeyCacheURL+")")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the persistent package cache")
	pf.StringVar(&projectDir, "project", ".", "Directory holding the project file")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides "+config.KeyLogLevel+")")
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed in red on stderr.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		log.Debug(log.CatCLI, "command failed", "error", err)
	}
	if env != nil {
		// PostRun is skipped when RunE fails.
		if cerr := env.Close(context.Background()); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", cerr)
		}
		env = nil
	}
	return err
}
