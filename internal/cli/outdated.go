package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/extension"
	"github.com/kispace-io/appspace/internal/registry"
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List pinned project extensions with newer registry releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := extension.LoadProject(extension.ProjectPath(projectDir))
		if err != nil {
			return err
		}

		var rows []outdatedRow
		for _, d := range p.Extensions {
			if d.ID == "" || d.Version == "" {
				continue
			}
			ns, name, err := registry.SplitID(d.ID)
			if err != nil {
				return err
			}
			versions, err := env.registry.Versions(cmd.Context(), ns, name)
			if err != nil {
				return fmt.Errorf("listing versions of %s: %w", d.ID, err)
			}
			if latest, ok := newerVersion(d.Version, versions); ok {
				rows = append(rows, outdatedRow{ID: d.ID, Current: d.Version, Latest: latest})
			}
		}

		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All pinned extensions are up to date.")
			return nil
		}
		return printOutdated(cmd.OutOrStdout(), rows)
	},
}

func init() {
	rootCmd.AddCommand(outdatedCmd)
}

type outdatedRow struct {
	ID      string
	Current string
	Latest  string
}

// newerVersion returns the newest entry of versions (sorted newest first)
// when it is greater than current. Unparseable versions never compare newer.
func newerVersion(current string, versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return "", false
	}
	latest, err := semver.NewVersion(versions[0])
	if err != nil || !latest.GreaterThan(cur) {
		return "", false
	}
	return versions[0], true
}

func printOutdated(w io.Writer, rows []outdatedRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tCURRENT\tLATEST")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Current, color.GreenString("%s", r.Latest))
	}
	return tw.Flush()
}
