package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/cli"
	"github.com/grovetools/forksync/config"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/paths"
)

// PathsOutput lists where forksync keeps its files.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	ConfigFile string `json:"config_file,omitempty"`
	DataDir    string `json:"data_dir"`
	StateDir   string `json:"state_dir"`
	CacheDir   string `json:"cache_dir"`
	CacheFile  string `json:"cache_file"`
	LogDir     string `json:"log_dir"`
	ToolHome   string `json:"tool_home"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, validate and locate the forksync configuration",
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSchemaCmd(),
		newConfigValidateCmd(),
		newConfigPathCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with defaults applied",
		Long: `Print the effective configuration: the config file merged over the
defaults, with ${VAR} references expanded.

Examples:
  forksync config show
  forksync config show --format toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cli.GetOptions(cmd))
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), cfg.Document())
			}

			f := config.FormatYAML
			switch format {
			case "yaml", "yml", "":
			case "toml":
				f = config.FormatTOML
			default:
				return fmt.Errorf("unknown format %q (use yaml or toml)", format)
			}

			data, err := cfg.Marshal(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Source != "" {
				fmt.Fprintf(out, "# Source: %s\n", cfg.Source)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or toml")
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file against the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cli.GetOptions(cmd))
			if err != nil {
				return err
			}
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			if cfg.Source == "" {
				pretty.InfoPretty("No config file found; defaults are valid")
				return nil
			}
			pretty.Success("Configuration is valid")
			pretty.Path("File", cfg.Source)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where forksync reads and writes its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			out := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				DataDir:   paths.DataDir(),
				StateDir:  paths.StateDir(),
				CacheDir:  paths.CacheDir(),
				CacheFile: cachePath(),
				LogDir:    paths.LogDir(),
			}

			switch {
			case opts.ConfigFile != "":
				out.ConfigFile = opts.ConfigFile
			case os.Getenv(config.ConfigEnv) != "":
				out.ConfigFile = os.Getenv(config.ConfigEnv)
			default:
				if found, err := config.FindConfigFile(paths.ConfigDir()); err == nil {
					out.ConfigFile = found
				}
			}

			var cfg *config.Config
			if out.ConfigFile != "" {
				cfg, _ = config.Load(out.ConfigFile)
			}
			out.ToolHome = resolveToolHome("", cfg)

			if opts.JSONOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			pretty.Path("Config dir", out.ConfigDir)
			if out.ConfigFile != "" {
				pretty.Path("Config file", out.ConfigFile)
			} else {
				pretty.Field("Config file", "(none)")
			}
			pretty.Path("Data dir", out.DataDir)
			pretty.Path("State dir", out.StateDir)
			pretty.Path("Cache file", out.CacheFile)
			pretty.Path("Log dir", out.LogDir)
			pretty.Path("Tool home", out.ToolHome)
			return nil
		},
	}
}
