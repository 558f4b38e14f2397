package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/urlsort/internal/logx"
	"github.com/btraven00/urlsort/internal/sorter"
	"github.com/btraven00/urlsort/pkg/domains"
)

var (
	cfgFile string
	quiet   bool
	verbose int
)

// rootCmd sorts the URLs found under the input directory into per-domain files.
var rootCmd = &cobra.Command{
	Use:   "urlsort [input] [output]",
	Short: "Sort every URL found in the input files into per-domain output files",
	Long: `urlsort scans every file under the input directory for URLs and appends each
one to <output>/<domain>.txt, where <domain> is the entry of the domain list the
URL's host belongs to. URLs of hosts that are not listed go to unknown.txt.

Files are read in fixed-size chunks, so inputs of any size can be processed with
bounded memory. Output files are only ever appended to.

Examples:
  urlsort
  urlsort corpus/ sorted/ --domains domains.json
  urlsort corpus/ sorted/ --filter .txt,.log --filter-type whitelist
  urlsort corpus/ sorted/ --collapse-subdomains --chunks 65536 -v`,
	Args:          cobra.MaximumNArgs(2),
	RunE:          runSort,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). An interrupt cancels the run; output files are
// still flushed and closed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := sorter.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.urlsort.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "no output")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "verbose output, repeat for more detail (hurts performance)")
	rootCmd.PersistentFlags().StringP("domains", "d", defaults.DomainsFile, "domain list file path (.json array or one domain per line)")

	rootCmd.Flags().String("encoding", defaults.Encoding, "input file encoding")
	rootCmd.Flags().String("filter", defaults.Filter, "comma-separated file extensions to include or exclude")
	rootCmd.Flags().String("filter-type", defaults.FilterType, "whether to use the filter as a whitelist or blacklist")
	rootCmd.Flags().IntP("chunks", "c", defaults.ChunkSize, "chunk size in bytes")
	rootCmd.Flags().BoolP("unescape-slashes", "u", defaults.UnescapeSlashes, `replace \/ escapes with slashes`)
	rootCmd.Flags().BoolP("collapse-subdomains", "s", defaults.CollapseSubdomains, "collapse subdomains into their registrable domain")

	viper.SetDefault("input", defaults.InputDir)
	viper.SetDefault("output", defaults.OutputDir)
	for _, name := range []string{"quiet", "verbose", "domains"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}
	for _, name := range []string{"encoding", "filter", "filter-type", "chunks", "unescape-slashes", "collapse-subdomains"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.Flags().Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".urlsort" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".urlsort")
	}

	viper.SetEnvPrefix("URLSORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges flags, environment and config file; positional arguments win.
func loadConfig(args []string) (sorter.Config, error) {
	cfg := sorter.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", sorter.ErrInvalidConfig, err)
	}

	if len(args) > 0 {
		cfg.InputDir = args[0]
	}
	if len(args) > 1 {
		cfg.OutputDir = args[1]
	}

	return cfg, nil
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	logger := logx.New(out, cfg.Verbose, cfg.Quiet)
	fs := afero.NewOsFs()

	registry, err := domains.Load(fs, cfg.DomainsFile)
	if err != nil {
		return fmt.Errorf("%w: %v", sorter.ErrInvalidConfig, err)
	}
	logger.Debug("loaded domain list", "path", cfg.DomainsFile, "groups", registry.Len())

	s, err := sorter.New(fs, cfg, registry, logger)
	if err != nil {
		return err
	}

	paths, err := s.Inputs()
	if err != nil {
		return fmt.Errorf("%w: %v", sorter.ErrInvalidConfig, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Processing %d files...\n", len(paths))
	}

	summary, err := s.Run(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("run stopped after %d of %d files: %w", summary.Files, len(paths), err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Processed %d files in %.3f seconds\n", summary.Files, summary.Elapsed.Seconds())
	}

	if cfg.Verbose > 0 && !cfg.Quiet {
		printGroupCounts(cmd, summary)
	}

	return nil
}

func printGroupCounts(cmd *cobra.Command, summary *sorter.Summary) {
	groups := make([]string, 0, len(summary.Groups))
	for group := range summary.Groups {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	out := cmd.ErrOrStderr()
	for _, group := range groups {
		fmt.Fprintf(out, "%s: %d urls\n", group, summary.Groups[group])
	}
	fmt.Fprintf(out, "%d urls, %d rejoined across chunk boundaries\n", summary.Matches, summary.Stitched)
}
