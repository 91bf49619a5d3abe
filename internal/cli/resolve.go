package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/ghref"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <github-reference>",
	Short: "Resolve a GitHub-hosted extension to its entry-point URL",
	Long: `Resolve a GitHub reference to the CDN URL of its entry-point script.

Accepted forms:
  https://github.com/owner/repo[/tree/ref][/path]
  owner/repo[@ref][/path]

An explicit path wins; otherwise the main field of the repository's
package.json is used; otherwise conventional file names are probed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ghref.Parse(args[0])
		if err != nil {
			return err
		}
		ep, err := env.resolver.ResolveEntryPoint(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if resolveJSON {
			data, err := json.MarshalIndent(ep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		fmt.Fprintln(out, ep.URL)
		note := "entry " + ep.Path
		if ep.Transpiled {
			note += ", transpiled from TypeScript"
		}
		fmt.Fprintln(cmd.ErrOrStderr(), color.HiBlackString("(%s; canonical %s)", note, ghref.ReferenceURL(id)))
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output the entry point as JSON")
	rootCmd.AddCommand(resolveCmd)
}
