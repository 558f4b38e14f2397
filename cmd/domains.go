package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/urlsort/internal/sink"
	"github.com/btraven00/urlsort/pkg/domains"
)

var (
	listJSON   bool
	sortGroups bool
)

// domainsCmd represents the domains command
var domainsCmd = &cobra.Command{
	Use:   "domains [output]",
	Short: "List the domain groups of a domain list",
	Long: `The domains command loads a domain list the same way a sort run does and shows
every group it defines, including the implicit unknown group, with the output file
its URLs are appended to and the number of lines that file already holds.

Examples:
  urlsort domains                          # groups of ./domains.txt
  urlsort domains --domains list.json out/ # groups of list.json, files under out/
  urlsort domains --json                   # output as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDomains,
}

// GroupInfo describes one domain group and its output file.
type GroupInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Lines  int    `json:"lines"`
}

func runDomains(cmd *cobra.Command, args []string) error {
	outputDir := viper.GetString("output")
	if len(args) > 0 {
		outputDir = args[0]
	}

	fs := afero.NewOsFs()

	registry, err := domains.Load(fs, viper.GetString("domains"))
	if err != nil {
		return err
	}

	groups := registry.Groups()
	if sortGroups {
		groups = registry.Sorted()
	}

	info, err := describeGroups(fs, sink.New(fs, outputDir), groups)
	if err != nil {
		return err
	}

	if listJSON {
		return outputGroupsJSON(cmd.OutOrStdout(), info)
	}

	return outputGroupsTable(cmd.OutOrStdout(), info)
}

func describeGroups(fs afero.Fs, out *sink.Sink, groups []string) ([]GroupInfo, error) {
	info := make([]GroupInfo, 0, len(groups))

	for _, group := range groups {
		gi := GroupInfo{Name: group, Path: out.Path(group)}

		lines, err := countLines(fs, gi.Path)
		switch {
		case err == nil:
			gi.Exists = true
			gi.Lines = lines
		case !isNotExist(fs, gi.Path):
			return nil, fmt.Errorf("failed to read %s: %w", gi.Path, err)
		}

		info = append(info, gi)
	}

	return info, nil
}

func isNotExist(fs afero.Fs, path string) bool {
	exists, err := afero.Exists(fs, path)
	return err == nil && !exists
}

func countLines(fs afero.Fs, path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	lines := 0
	r := bufio.NewReader(f)
	for {
		_, err := r.ReadSlice('\n')
		switch err {
		case nil:
			lines++
		case bufio.ErrBufferFull:
			// Long line, keep reading until its newline.
		case io.EOF:
			return lines, nil
		default:
			return lines, err
		}
	}
}

func outputGroupsJSON(w io.Writer, info []GroupInfo) error {
	output := struct {
		Groups []GroupInfo `json:"groups"`
		Count  int         `json:"count"`
	}{
		Groups: info,
		Count:  len(info),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputGroupsTable(w io.Writer, info []GroupInfo) error {
	fmt.Fprintf(w, "Domain Groups (%d):\n\n", len(info))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tOUTPUT\tLINES")
	fmt.Fprintln(tw, "-----\t------\t-----")

	for _, gi := range info {
		lines := "-"
		if gi.Exists {
			lines = fmt.Sprintf("%d", gi.Lines)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", gi.Name, gi.Path, lines)
	}

	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(domainsCmd)

	domainsCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	domainsCmd.Flags().BoolVar(&sortGroups, "sort", false, "list groups alphabetically instead of in list order")
}
