package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <namespace.name[@version]>",
	Short: "Show registry metadata for an extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ns, name, version, err := parseExtensionArg(args[0])
		if err != nil {
			return err
		}
		ext, err := env.registry.GetExtension(cmd.Context(), ns, name, version)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if showJSON {
			data, err := json.MarshalIndent(ext, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s %s\n", color.CyanString("%s", ext.Label()), color.HiBlackString("v%s", ext.Version))
		if ext.Description != "" {
			fmt.Fprintln(out, ext.Description)
		}
		fmt.Fprintf(out, "Downloads: %d\n", ext.DownloadCount)
		if ext.AverageRating > 0 {
			fmt.Fprintf(out, "Rating:    %.1f\n", ext.AverageRating)
		}
		if t := ext.PublishedAt(); !t.IsZero() {
			fmt.Fprintf(out, "Published: %s\n", t.Format("2006-01-02"))
		}
		if ext.Verified {
			fmt.Fprintln(out, color.GreenString("Verified publisher"))
		}
		if u, ok := env.registry.DownloadURL(ext); ok {
			fmt.Fprintf(out, "Download:  %s\n", u)
		}

		versions, err := env.registry.Versions(cmd.Context(), ns, name)
		if err == nil && len(versions) > 1 {
			if len(versions) > 10 {
				versions = append(versions[:10], "...")
			}
			fmt.Fprintf(out, "Versions:  %s\n", strings.Join(versions, ", "))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output raw metadata as JSON")
	rootCmd.AddCommand(showCmd)
}
