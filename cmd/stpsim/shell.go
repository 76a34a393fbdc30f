package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
)

func startInteractiveShell(s *session) {
	username := os.Getenv("USER")
	if username == "" {
		username = "user"
	}

	// Liner is used for command history and other interactive CLI features
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	historyFile := s.cfg.HistoryFile
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(s.out, "Welcome to the Spanning Tree Simulator CLI\n")
	fmt.Fprintf(s.out, "Type 'help' for available commands or 'exit' to quit.\n\n")

	for {
		prompt := fmt.Sprintf("%s@stp-sim> ", username)
		input, err := line.Prompt(prompt)

		if err != nil {
			// Handle Ctrl+C or EOF
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(s.out, "\nUse 'exit' to quit")
				continue
			}
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if input == "exit" || input == "quit" {
			fmt.Fprintln(s.out, "Goodbye!")
			break
		}

		executeCommand(s, input)
	}

	if f, err := os.Create(historyFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	} else {
		logger.LogWarn("Could not save history to %s: %v", historyFile, err)
	}
}

var shellCommands = []string{
	"load topology ",
	"boot",
	"run ",
	"converge ",
	"show topology",
	"show bridge ",
	"show bpdu ",
	"export dot ",
	"help",
	"exit",
}

func completeCommand(line string) []string {
	var out []string
	for _, c := range shellCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// executeCommand parses one shell line against a fresh command tree bound
// to s.
func executeCommand(s *session, input string) {
	args := strings.Fields(input)
	if len(args) == 0 {
		return
	}

	cmd := newShellCommand(s)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func newShellCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(s.out)
	cmd.SetErr(s.out)

	loadCmd := &cobra.Command{Use: "load", Short: "Load commands"}
	loadCmd.AddCommand(&cobra.Command{
		Use:   "topology [filename]",
		Short: "Load topology from a YAML or DOT file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return s.load(path)
		},
	})

	bootCmd := &cobra.Command{
		Use:   "boot",
		Short: "Reset every bridge to its initial state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.boot()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [steps]",
		Short: "Run election rounds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := optionalCount(args, s.cfg.Steps)
			if err != nil {
				return err
			}
			return s.run(steps)
		},
	}

	convergeCmd := &cobra.Command{
		Use:   "converge [max]",
		Short: "Run rounds until nothing changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound, err := optionalCount(args, defaultConvergeBound)
			if err != nil {
				return err
			}
			return s.converge(bound)
		},
	}

	showCmd := &cobra.Command{Use: "show", Short: "Show commands"}
	showCmd.AddCommand(&cobra.Command{
		Use:   "topology",
		Short: "Show every bridge and port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.showTopology()
		},
	}, &cobra.Command{
		Use:   "bridge [label]",
		Short: "Show one bridge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.showBridge(args[0])
		},
	}, &cobra.Command{
		Use:   "bpdu [label] [port]",
		Short: "Show the BPDU a port advertises",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.showBPDU(args[0], args[1])
		},
	})

	exportCmd := &cobra.Command{Use: "export", Short: "Export commands"}
	exportCmd.AddCommand(&cobra.Command{
		Use:   "dot [file]",
		Short: "Write the network as a Graphviz graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.exportDOT(args[0])
		},
	})

	helpCmd := &cobra.Command{
		Use:   "help",
		Short: "Help about any command",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(s.out, "Available commands:")
			fmt.Fprintln(s.out, "  load topology [file]      - Load topology from YAML or DOT file (default: "+s.cfg.Topology+")")
			fmt.Fprintln(s.out, "  boot                      - Reset every bridge to round 0")
			fmt.Fprintf(s.out, "  run [steps]               - Run election rounds (default: %d)\n", s.cfg.Steps)
			fmt.Fprintf(s.out, "  converge [max]            - Run until a round changes nothing (default max: %d)\n", defaultConvergeBound)
			fmt.Fprintln(s.out, "  show topology             - Display every bridge and port")
			fmt.Fprintln(s.out, "  show bridge <label>       - Display one bridge")
			fmt.Fprintln(s.out, "  show bpdu <label> <port>  - Dump the BPDU a port advertises")
			fmt.Fprintln(s.out, "  export dot <file>         - Write the tree as a Graphviz graph")
			fmt.Fprintln(s.out, "  help                      - Show this help message")
			fmt.Fprintln(s.out, "  exit                      - Exit the shell")
		},
	}

	cmd.AddCommand(loadCmd, bootCmd, runCmd, convergeCmd, showCmd, exportCmd, helpCmd)
	return cmd
}

func optionalCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
