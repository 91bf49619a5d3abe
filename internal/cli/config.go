package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write configuration stored at ~/.appspace/config.yaml.
Every key can also be set through an APPSPACE_* environment variable,
with dots replaced by underscores (tracing.enabled -> APPSPACE_TRACING_ENABLED).

Keys: ` + strings.Join(config.Keys(), ", "),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		s, err := config.Current()
		if err != nil {
			return err
		}
		token := ""
		if s.GitHubToken != "" {
			token = "(set)"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s = %s\n", config.KeyRegistryURL, s.RegistryURL)
		fmt.Fprintf(out, "%s = %s\n", config.KeyCDNURL, s.CDNURL)
		fmt.Fprintf(out, "%s = %s\n", config.KeyGitHubAPIURL, s.GitHubAPIURL)
		fmt.Fprintf(out, "%s = %s\n", config.KeyGitHubToken, token)
		fmt.Fprintf(out, "%s = %s\n", config.KeyCacheURL, s.CacheURL)
		fmt.Fprintf(out, "%s = %s\n", config.KeyWorkspaceURL, s.WorkspaceURL)
		fmt.Fprintf(out, "%s = %s\n", config.KeyLogLevel, s.LogLevel)
		fmt.Fprintf(out, "%s = %s\n", config.KeyHTTPTimeout, s.HTTPTimeout)
		fmt.Fprintf(out, "%s = %t\n", config.KeyTracingEnabled, s.Tracing.Enabled)
		fmt.Fprintf(out, "%s = %s\n", config.KeyTracingExport, s.Tracing.Exporter)
		fmt.Fprintf(out, "%s = %s\n", config.KeyTracingFile, s.Tracing.FilePath)
		fmt.Fprintf(out, "%s = %s\n", config.KeyTracingOTLP, s.Tracing.OTLPEndpoint)
		return nil
	},
}
