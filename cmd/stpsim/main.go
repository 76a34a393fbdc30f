// Command stpsim runs IEEE 802.1D spanning tree elections over a bridged
// LAN described by a YAML or DOT topology file.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/config"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

type rootOptions struct {
	envFile  string
	logLevel string
	schedule string
	record   string
}

type simulateOptions struct {
	steps    int
	converge bool
	dotFile  string
}

func newRootCommand(s *session) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stpsim",
		Short: "A spanning tree protocol simulator in Go",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd, s)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			startInteractiveShell(s)
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", "", "read settings from this .env file")
	flags.StringVar(&opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&opts.schedule, "schedule", "", "round schedule: sweep or barrier")
	flags.StringVar(&opts.record, "record", "", "record every round into this SQLite database")

	rootCmd.AddCommand(newSimulateCommand(s))
	return rootCmd
}

// resolve loads the configuration and lets flags override it
func (o *rootOptions) resolve(cmd *cobra.Command, s *session) error {
	var files []string
	if o.envFile != "" {
		files = append(files, o.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		if cfg.LogLevel, err = logger.ParseLevel(o.logLevel); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("schedule") {
		if cfg.Schedule, err = stp.ParseSchedule(o.schedule); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("record") {
		cfg.RecordDB = o.record
	}

	logger.SetLogLevel(cfg.LogLevel)
	s.cfg = cfg
	return nil
}

func newSimulateCommand(s *session) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate [topology]",
		Short: "Load a topology, run the election and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			steps := s.cfg.Steps
			if cmd.Flags().Changed("steps") {
				steps = opts.steps
			}
			if steps < 0 {
				return fmt.Errorf("invalid step count %d, want 0 or more", steps)
			}
			if err := s.load(path); err != nil {
				return err
			}

			if opts.converge {
				if err := s.converge(defaultConvergeBound); err != nil {
					return err
				}
			} else {
				if err := s.run(steps); err != nil {
					return err
				}
			}

			if err := s.showTopology(); err != nil {
				return err
			}
			if opts.dotFile != "" {
				return s.exportDOT(opts.dotFile)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.steps, "steps", "n", config.DefaultSteps, "number of rounds to run")
	cmd.Flags().BoolVar(&opts.converge, "converge", false, "run until a round changes nothing instead of a fixed count")
	cmd.Flags().StringVar(&opts.dotFile, "dot", "", "write the resulting tree as a Graphviz file")
	return cmd
}

func main() {
	s := newSession(config.Default(), os.Stdout)
	atexit.Register(s.cleanup)

	// signal handling for cleanup
	setupSignalHandler()

	if err := newRootCommand(s).Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// graceful shutdown on SIGINT/SIGTERM
func setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal. Cleaning up...")
		atexit.Exit(0)
	}()
}
