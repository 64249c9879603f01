// Package cli provides the command-line interface for leapcsv.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/cli/commands"
	"github.com/leapstack-labs/leapcsv/internal/cli/config"
	"github.com/leapstack-labs/leapcsv/internal/cli/output"
	"github.com/leapstack-labs/leapcsv/pkg/dialect"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapcsv",
		Short: "leapcsv - Dialect-Tolerant Delimited Data Toolkit",
		Long: `leapcsv reads delimited files the way they actually occur in the wild:
unknown separators, duplicate headers, ragged rows, quoted newlines and
mixed quoting styles.

It detects the dialect, resolves headers, and streams records for
inspection, filtering, conversion, or import into a database.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.Level(),
			}))

			mode := output.ParseMode(cfg.Output)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			ctx := commands.WithConfig(cmd.Context(), cfg)
			ctx = commands.WithRenderer(ctx, renderer)
			ctx = commands.WithLogger(ctx, log)
			cmd.SetContext(ctx)

			if used := config.GetConfigFileUsed(); used != "" {
				log.Debug("loaded config file", "path", used)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapcsv.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|csv)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("state", "", "Path to state database")

	// Read option flags, shared by every file-reading command.
	rootCmd.PersistentFlags().String("dialect", "", "Dialect preset ("+strings.Join(dialect.List(), "|")+")")
	rootCmd.PersistentFlags().StringP("separator", "s", "", "Field separator (auto-detected when empty)")
	rootCmd.PersistentFlags().Bool("no-header", false, "Treat the first line as data")
	rootCmd.PersistentFlags().Bool("strict-headers", false, "Fail on duplicate header names")
	rootCmd.PersistentFlags().Bool("case-sensitive", false, "Case-sensitive header lookups")
	rootCmd.PersistentFlags().Bool("trim", false, "Trim surrounding whitespace from fields")
	rootCmd.PersistentFlags().Int("skip-rows", 0, "Skip the first N physical lines")
	rootCmd.PersistentFlags().Bool("multiline", true, "Let quoted fields span physical lines")
	rootCmd.PersistentFlags().String("rejoin", "", "Text inserted between merged physical lines")
	rootCmd.PersistentFlags().Bool("backslash-escape", false, `Accept \" inside quoted fields`)
	rootCmd.PersistentFlags().Bool("single-quote", false, "Accept single-quoted fields")
	rootCmd.PersistentFlags().Bool("validate-columns", false, "Fail records with a wrong field count")
	rootCmd.PersistentFlags().Bool("empty-missing", false, `Yield "" for absent columns`)
	rootCmd.PersistentFlags().String("encoding", "", "Input encoding (utf-8|latin1|windows-1251|windows-1252)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("encoding", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"utf-8", "latin1", "windows-1251", "windows-1252"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewHeadersCommand())
	rootCmd.AddCommand(commands.NewHeadCommand())
	rootCmd.AddCommand(commands.NewSelectCommand())
	rootCmd.AddCommand(commands.NewCountCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapcsv.

To load completions:

Bash:
  $ source <(leapcsv completion bash)

Zsh:
  $ leapcsv completion zsh > "${fpath[1]}/_leapcsv"

Fish:
  $ leapcsv completion fish | source

PowerShell:
  PS> leapcsv completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
