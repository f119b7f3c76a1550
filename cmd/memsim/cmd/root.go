// Package cmd provides the command-line interface of memsim.
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/shell"
)

// rootCmd represents the base command when called without any subcommands.
// It starts the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "memsim",
	Short: "memsim simulates a physical memory allocator and an L1/L2 cache.",
	Long: `memsim simulates a contiguous physical memory pool managed with ` +
		`first fit, best fit or worst fit placement, and a two-level ` +
		`set-associative cache. Without a subcommand it starts an ` +
		`interactive shell.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runInteractive,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("env", nil, "Load settings from these .env files")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("monitor", false, "Serve the session state over HTTP")
	flags.Int("port", 0, "Monitor port; 0 picks a free one")
	flags.Bool("open-browser", false, "Open the monitor page in a browser")
	flags.Bool("record", false, "Record allocator and cache events to SQLite")
	flags.String("record-path", "", "Recording file name, without extension")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers, such as the recorder flush, run
// before the process exits.
func Execute() {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	go func() {
		<-interrupts
		fmt.Fprintln(os.Stderr)
		atexit.Exit(130)
	}()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loaded is the configuration of the running command, set by setup.
var loaded config.Config

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	loaded = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logging.Init(logging.Options{Writer: cmd.ErrOrStderr(), Level: level})
	logging.L.Debug("configuration loaded", "config", fmt.Sprintf("%+v", cfg))

	return nil
}

// loadConfig reads the configuration files and the environment, then
// applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	files, err := flags.GetStringSlice("env")
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flags.Changed("monitor") {
		cfg.Monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("port") {
		cfg.MonitorPort, _ = flags.GetInt("port")
	}

	if flags.Changed("open-browser") {
		cfg.OpenBrowser, _ = flags.GetBool("open-browser")
	}

	if flags.Changed("record") {
		cfg.Record, _ = flags.GetBool("record")
	}

	if flags.Changed("record-path") {
		cfg.RecordPath, _ = flags.GetString("record-path")
		cfg.Record = true
	}

	return cfg, cfg.Validate()
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	s, err := startSession(loaded)
	if err != nil {
		return err
	}
	defer s.close()

	sh := shell.New(s.sim, cmd.OutOrStdout())

	return sh.Run(cmd.Context(), cmd.InOrStdin())
}
