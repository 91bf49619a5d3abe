package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/extension"
)

var extensionGitHub bool

func init() {
	extensionAddCmd.Flags().BoolVar(&extensionGitHub, "github", false, "Treat the argument as a GitHub reference")

	extensionCmd.AddCommand(extensionAddCmd)
	extensionCmd.AddCommand(extensionRemoveCmd)
	extensionCmd.AddCommand(extensionListCmd)
	extensionCmd.AddCommand(extensionSyncCmd)
	rootCmd.AddCommand(extensionCmd)
}

func manager() *extension.Manager {
	return extension.NewManager(projectDir, env.registry, env.loader, env.resolver, env.host)
}

var extensionCmd = &cobra.Command{
	Use:     "extension",
	Aliases: []string{"ext"},
	Short:   "Manage the project's extension list",
	Long: `Manage the extensions declared in ` + branding.ProjectFile() + `.

Registry extensions are declared by id with an optional pinned version.
GitHub extensions are declared by reference and resolved on sync.`,
}

var extensionAddCmd = &cobra.Command{
	Use:   "add <namespace.name[@version]> | --github <reference>",
	Short: "Declare an extension in the project file",
	Long: `Declare an extension in the project file. The file is created if needed.

Example:
  ` + branding.CLIName() + ` ext add redhat.vscode-yaml@1.15.0
  ` + branding.CLIName() + ` ext add --github octo/tool@v2/src/extension.ts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var d extension.Declaration
		if extensionGitHub {
			d.GitHub = args[0]
		} else {
			ns, name, version, err := parseExtensionArg(args[0])
			if err != nil {
				return err
			}
			d.ID, d.Version = ns+"."+name, version
		}

		if err := manager().Add(d); err != nil {
			return fmt.Errorf("adding extension: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extension %q added to %s.\n", d.Key(), branding.ProjectFile())
		return nil
	},
}

var extensionRemoveCmd = &cobra.Command{
	Use:   "remove <id-or-reference>",
	Short: "Remove an extension from the project file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager().Remove(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("removing extension: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extension %q removed.\n", args[0])
		return nil
	},
}

var extensionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared extensions and their cache status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := manager().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing extensions: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No extensions declared. Run '%s ext add <id>' to add one.\n", branding.CLIName())
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "EXTENSION\tSOURCE\tVERSION\tSTATUS")
		for _, s := range list {
			version := s.Version
			if version == "" {
				version = "latest"
			}
			if s.Kind == extension.SourceGitHub {
				version = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Key(), s.Kind, version, statusColor(s.Status))
		}
		return w.Flush()
	},
}

var extensionSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Acquire every declared extension",
	Long: `Load every registry extension through the package cache, downloading what
is missing, register contributed commands, and resolve GitHub extensions to
their entry-point URLs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := manager().Sync(cmd.Context())
		out := cmd.OutOrStdout()
		for _, r := range results {
			switch {
			case r.Err != nil:
				fmt.Fprintf(out, "%s %s\n", color.RedString("✗"), r.Source.Key)
			case r.Package != nil:
				fmt.Fprintf(out, "%s %s %s\n", color.GreenString("✓"), r.Package.ExtensionID, color.HiBlackString("v%s", r.Package.Version))
			case r.EntryPoint != nil:
				fmt.Fprintf(out, "%s %s %s\n", color.GreenString("✓"), r.Source.Key, color.HiBlackString("%s", r.EntryPoint.URL))
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d extension(s) synced, %d command(s) registered.\n", len(results), len(env.commands.Commands()))
		return nil
	},
}

func statusColor(status string) string {
	switch status {
	case extension.StatusLoaded, extension.StatusCached:
		return color.GreenString("%s", status)
	case extension.StatusMissing:
		return color.YellowString("%s", status)
	default:
		return status
	}
}
