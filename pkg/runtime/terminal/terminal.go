package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/de-tools/riskread/pkg/runtime/terminal/commands"
	"github.com/de-tools/riskread/pkg/runtime/terminal/export"
	"github.com/de-tools/riskread/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	viper   *viper.Viper
	env     *commands.Env
	ready   bool
	output  io.Writer
	errOut  io.Writer
	closers []func() error
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
	Viper     *viper.Viper
	// Env skips bootstrapping when set; used by tests to inject fakes.
	Env *commands.Env
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Viper == nil {
		opts.Viper = config.NewViper()
	}

	cli := &CLI{
		viper:  opts.Viper,
		env:    &commands.Env{},
		output: opts.Output,
		errOut: opts.ErrOutput,
	}
	if opts.Env != nil {
		cli.env = opts.Env
		cli.ready = true
	}
	if cli.env.Out == nil {
		cli.env.Out = opts.Output
	}
	if cli.env.Text == nil {
		cli.env.Text = NewReporter(opts.Output)
	}
	if cli.env.Table == nil {
		cli.env.Table = export.NewReporter(opts.Output)
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	defer cli.close()
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) close() {
	for i := len(cli.closers) - 1; i >= 0; i-- {
		_ = cli.closers[i]()
	}
	cli.closers = nil
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "riskread",
		Short:             "Document risk analysis client",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}
	cmd.SetOut(cli.output)
	cmd.SetErr(cli.errOut)

	flags := cmd.PersistentFlags()
	flags.String("api-url", config.DefaultAPIURL, "Analysis API base URL")
	flags.String("token", "", "API bearer token")
	flags.String("profile", config.DefaultProfile, "Profile name in the profile file")
	flags.String("profile-path", "", "Path to the profile file (default $HOME/.riskreadcfg)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("cache-path", "", "Path to the cache database (default $HOME/.riskread/cache.sqlite)")

	for key, flag := range map[string]string{
		"api_url":      "api-url",
		"token":        "token",
		"profile":      "profile",
		"profile_path": "profile-path",
		"log_level":    "log-level",
		"cache.path":   "cache-path",
	} {
		_ = cli.viper.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(commands.NewUploadCmd(cli.env))
	cmd.AddCommand(commands.NewListCmd(cli.env))
	cmd.AddCommand(commands.NewShowCmd(cli.env))
	cmd.AddCommand(commands.NewWatchCmd(cli.env))
	cmd.AddCommand(commands.NewReportCmd(cli.env))
	cmd.AddCommand(commands.NewReanalyzeCmd(cli.env))
	cmd.AddCommand(commands.NewUpdateCmd(cli.env))
	cmd.AddCommand(commands.NewDeleteCmd(cli.env))
	cmd.AddCommand(commands.NewStatsCmd(cli.env))
	cmd.AddCommand(commands.NewRecentCmd(cli.env))
	cmd.AddCommand(commands.NewCacheCmd(cli.env))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(cli.viper.GetString("log_level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.errOut}).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	if cli.ready {
		return nil
	}

	explicitURL := cmd.Flags().Changed("api-url") || os.Getenv(config.EnvPrefix+"_API_URL") != ""
	built, closers, err := Bootstrap(ctx, cli.viper, explicitURL, cli.errOut)
	cli.closers = append(cli.closers, closers...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	built.Out, built.Text, built.Table = cli.env.Out, cli.env.Text, cli.env.Table
	*cli.env = *built
	cli.ready = true
	return nil
}
