package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kispace-io/appspace/internal/registry"
)

var (
	searchSize     int
	searchOffset   int
	searchVerified bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the extension registry",
	Long: `Search the configured Open VSX registry. The query is matched by the
registry against extension names, display names and descriptions.
Use --size and --offset to page through results.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchSize, "size", 20, "Number of results per page")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Index of the first result")
	searchCmd.Flags().BoolVar(&searchVerified, "verified", false, "Only show extensions from verified publishers")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

// searchEntry represents a registry hit for display.
type searchEntry struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Downloads   int64  `json:"downloads"`
	Verified    bool   `json:"verified"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	res, err := env.registry.Search(cmd.Context(), query, searchSize, searchOffset)
	if err != nil {
		return fmt.Errorf("searching registry: %w", err)
	}

	entries := searchEntries(res.Extensions, searchVerified)
	if len(entries) == 0 {
		msg := "No extensions found"
		if query != "" {
			msg += fmt.Sprintf(" matching %q", query)
		}
		if searchVerified {
			msg += " from verified publishers"
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}

	if searchJSON {
		return printSearchJSON(cmd.OutOrStdout(), entries)
	}
	if err := printSearchTable(cmd.OutOrStdout(), entries); err != nil {
		return err
	}
	if shown := res.Offset + len(res.Extensions); shown < res.TotalSize {
		fmt.Fprintln(cmd.OutOrStdout(), color.HiBlackString("(%d of %d, next page: --offset %d)", shown, res.TotalSize, shown))
	}
	return nil
}

// searchEntries converts registry hits, dropping unverified publishers when
// verifiedOnly is set.
func searchEntries(exts []*registry.Extension, verifiedOnly bool) []searchEntry {
	var entries []searchEntry
	for _, ext := range exts {
		if ext == nil || (verifiedOnly && !ext.Verified) {
			continue
		}
		entries = append(entries, searchEntry{
			ID:          registry.ExtensionID(ext),
			Version:     ext.Version,
			DisplayName: ext.DisplayName,
			Description: ext.Description,
			Downloads:   ext.DownloadCount,
			Verified:    ext.Verified,
		})
	}
	return entries
}

func printSearchTable(w io.Writer, entries []searchEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tDOWNLOADS\tDESCRIPTION")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		desc := e.Description
		if desc == "" {
			desc = e.DisplayName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, version, strconv.FormatInt(e.Downloads, 10), truncate(desc, 60))
	}
	return tw.Flush()
}

func printSearchJSON(w io.Writer, entries []searchEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
