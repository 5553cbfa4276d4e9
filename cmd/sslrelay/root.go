package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"sslrelay"
)

// configFailure distinguishes a configuration/validation error from a
// runtime (bind, accept-loop) error so main can choose the right exit code,
// per spec.md §7's error taxonomy.
type configFailure struct{ err error }

func (c *configFailure) Error() string { return c.err.Error() }
func (c *configFailure) Unwrap() error { return c.err }

type runConfig struct {
	configPath string
	testConfig bool
}

func newRootCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:           "sslrelay",
		Short:         "Bidirectional TCP/TLS relay",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.configPath, "config", "c", "", "path to YAML config file (defaults to $SSLRELAY_CONFIG)")
	f.BoolVarP(&cfg.testConfig, "test", "t", false, "validate configuration and exit")

	return cmd
}

func loadConfig(cfg *runConfig) (*sslrelay.Config, error) {
	if cfg.configPath != "" {
		return sslrelay.LoadConfig(cfg.configPath)
	}
	return sslrelay.LoadConfigFromEnv()
}

func runRelay(cmd *cobra.Command, cfg *runConfig) error {
	relayCfg, err := loadConfig(cfg)
	if err != nil {
		return &configFailure{err}
	}

	if cfg.testConfig {
		fmt.Fprintf(cmd.OutOrStdout(), "configuration OK\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  bind:   %s (downstream=%s)\n", relayCfg.BindAddress(), relayCfg.DownstreamKind)
		fmt.Fprintf(cmd.OutOrStdout(), "  remote: %s:%d (upstream=%s)\n", relayCfg.RemoteHost, relayCfg.RemotePort, relayCfg.UpstreamKind)
		return nil
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("[SSLRelay] starting, bind=%s remote=%s:%d", relayCfg.BindAddress(), relayCfg.RemoteHost, relayCfg.RemotePort)

	relay, err := sslrelay.New(relayCfg, sslrelay.BaseHandler{}, sslrelay.EngineOptions{Logger: logger})
	if err != nil {
		return &configFailure{err}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- relay.Run() }()

	ctx := cmd.Context()
	select {
	case <-ctx.Done():
		logger.Printf("[SSLRelay] shutting down")
		return relay.Close()
	case err := <-errCh:
		return err
	}
}
