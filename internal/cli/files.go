package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/manifest"
)

var catEntry bool

var filesCmd = &cobra.Command{
	Use:   "files <namespace.name[@version]>",
	Short: "List the files of an extension package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := loadExtension(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, p := range pkg.Paths() {
			if pkg.IsBinary(p) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (binary)\n", p)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <namespace.name[@version]> [path]",
	Short: "Print a file from an extension package",
	Long: `Print a file from an extension package. The path may be given relative
to the package root or to its extension/ directory. With --entry the
package's entry-point script is printed instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if catEntry == (len(args) == 2) {
			return fmt.Errorf("give either a path or --entry")
		}
		pkg, err := loadExtension(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if catEntry {
			content, ok := loader.EntryPointContent(pkg)
			if !ok {
				return fmt.Errorf("%s has no entry-point file", pkg.ExtensionID)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		}

		path := args[1]
		if _, ok := loader.File(pkg, path); !ok {
			path = "extension/" + manifest.StripRelative(path)
			if _, ok := loader.File(pkg, path); !ok {
				return fmt.Errorf("%s: no file %s", pkg.ExtensionID, args[1])
			}
		}
		data, err := pkg.FileBytes(path)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	catCmd.Flags().BoolVar(&catEntry, "entry", false, "Print the entry-point script")
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(catCmd)
}
