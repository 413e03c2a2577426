package main

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/de-tools/riskread/pkg/server"
	"github.com/de-tools/riskread/pkg/services/config"
	"github.com/de-tools/riskread/pkg/services/demo"
	"github.com/de-tools/riskread/pkg/services/mock"
)

func main() {
	v := newViper()

	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the demo analysis API for RiskRead",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, v)
		},
	}

	flags := rootCmd.Flags()
	flags.String("host", "localhost", "Interface to listen on")
	flags.String("port", "3000", "Port to listen on")
	flags.String("token", "", "Require this bearer token on API requests")
	flags.Duration("pending-for", 3*time.Second, "Time a new analysis stays pending")
	flags.Duration("processing-for", 10*time.Second, "Time an analysis spends processing")
	flags.Bool("seed", true, "Serve the demo analysis under the id \"demo\"")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"server.host":           "host",
		"server.port":           "port",
		"server.token":          "token",
		"server.pending_for":    "pending-for",
		"server.processing_for": "processing-for",
		"server.seed":           "seed",
		"log_level":             "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// SERVER_HOST and SERVER_PORT are still honoured without the prefix.
	_ = v.BindEnv("server.host", config.EnvPrefix+"_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", config.EnvPrefix+"_SERVER_PORT", "SERVER_PORT")
	return v
}

func runServer(cmd *cobra.Command, v *viper.Viper) error {
	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	store := demo.NewStore(demo.Config{
		PendingFor:    v.GetDuration("server.pending_for"),
		ProcessingFor: v.GetDuration("server.processing_for"),
	})
	if v.GetBool("server.seed") {
		store.Seed(mock.New(mock.DemoID))
		logger.Info().Str("analysis_id", mock.DemoID).Msg("demo analysis seeded")
	}

	addr := net.JoinHostPort(v.GetString("server.host"), v.GetString("server.port"))
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Token:           v.GetString("server.token"),
		Dependencies: server.Dependencies{
			Backend: store,
		},
	})

	return api.Start(ctx)
}
