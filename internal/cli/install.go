package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/loader"
)

var installActivate bool

var installCmd = &cobra.Command{
	Use:   "install <namespace.name[@version]>",
	Short: "Download, unpack and cache an extension package",
	Long: `Download an extension package from the registry, unpack it and store it
in the package cache. Without @version the latest release is installed.
A cached version is served without touching the network.

With --activate the package's contributed commands are registered with the
extension host and listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installActivate, "activate", false, "Register contributed commands and list them")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	pkg, err := loadExtension(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPackageSummary(cmd, pkg)

	if !installActivate {
		return nil
	}
	if _, err := env.host.Activate(cmd.Context(), pkg, nil); err != nil {
		return err
	}
	for _, c := range env.commands.Commands() {
		if c.Source != pkg.ExtensionID {
			continue
		}
		title := c.Title
		if c.Category != "" {
			title = c.Category + ": " + title
		}
		fmt.Fprintf(out, "  %s  %s\n", color.CyanString("%s", c.ID), title)
	}
	return nil
}

func printPackageSummary(cmd *cobra.Command, pkg *loader.Package) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s %s\n", color.GreenString("Installed"), pkg.ExtensionID, color.HiBlackString("v%s", pkg.Version))
	fmt.Fprintf(out, "Files:       %d (%d binary)\n", len(pkg.Files), len(pkg.BinaryFiles))
	if pkg.EntryPoint != "" {
		fmt.Fprintf(out, "Entry point: %s\n", pkg.EntryPoint)
	}
	if pkg.IsWebExtension {
		fmt.Fprintln(out, "Web:         yes")
	} else {
		fmt.Fprintln(out, "Web:         "+color.YellowString("no (no browser entry point)"))
	}
	for _, w := range pkg.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.YellowString("warning:"), w)
	}
}
