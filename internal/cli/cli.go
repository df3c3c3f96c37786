package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	SourcePath   string
	TargetPath   string
	Format       string
	TimeoutMs    int
	RulesPath    string
	FromMarkdown bool
	Interactive  bool
	Verbose      bool
	Jobs         int
	LookupDirs   []string
	Extensions   []string
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	// Define flags
	pflag.StringVarP(&cfg.Format, "format", "f", "text", "Output format: 'json' or 'text'.")
	pflag.IntVarP(&cfg.TimeoutMs, "timeout", "t", 0, "Abandon the comparison after this many milliseconds (0 = no limit).")
	pflag.StringVarP(&cfg.RulesPath, "rules", "r", "", "Load the marker-matching grammar from a YAML file.")
	pflag.BoolVarP(&cfg.FromMarkdown, "from-markdown", "m", false, "Read a markdown document from stdin (pipe) or clipboard and compare its first two code blocks.")
	pflag.BoolVarP(&cfg.Interactive, "interactive", "i", false, "Browse decisions in an interactive viewer instead of printing them.")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log pipeline stages to stderr.")
	pflag.IntVarP(&cfg.Jobs, "jobs", "j", 4, "Number of concurrent comparisons when comparing directories.")
	pflag.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "l", []string{}, "Change directory to look for input files (default: current directory).")
	pflag.StringSliceVarP(&cfg.Extensions, "extension", "e", []string{}, "Filter directory comparisons by extension (e.g., 'c', 'h').")

	pflag.Usage = func() {
		fmt.Println("Usage: sift [flags] <source-path> <target-path>")
		fmt.Println("\nCompare two source variants and classify each changed line as keep,")
		fmt.Println("remove, or filtered, honoring marker comments embedded in the files.")
		fmt.Println("Paths may be two files or two variant directories.")
		fmt.Println("\nExample: sift source_variant/main.c target_variant/main.c -f json")
		fmt.Println("\nFlags:")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	args := pflag.Args()
	switch {
	case cfg.FromMarkdown:
		if len(args) != 0 {
			return nil, fmt.Errorf("error: --from-markdown takes no positional arguments")
		}
	case len(args) != 2:
		pflag.Usage()
		return nil, fmt.Errorf("error: expected <source-path> and <target-path>")
	default:
		cfg.SourcePath = args[0]
		cfg.TargetPath = args[1]
	}

	if cfg.Format != "json" && cfg.Format != "text" {
		return nil, fmt.Errorf("error: --format must be 'json' or 'text'")
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}

	// Normalize extensions
	for i, ext := range cfg.Extensions {
		if len(ext) > 0 && ext[0] != '.' {
			cfg.Extensions[i] = "." + ext
		}
	}

	return cfg, nil
}
