// Package shell implements the line-oriented command interface of memsim.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/simulation"
)

// Prompt is printed before every command in interactive mode.
const Prompt = "memsim> "

type command struct {
	names []string
	usage string
	help  string
	run   func(s *Shell, args []string)
}

// A Shell reads commands and applies them to a session. Every command runs
// while holding the session lock.
type Shell struct {
	sim     *simulation.Simulation
	out     io.Writer
	printer *message.Printer
	running bool

	commands []*command
	byName   map[string]*command
}

// New creates a shell that writes its output to out.
func New(sim *simulation.Simulation, out io.Writer) *Shell {
	s := &Shell{
		sim:     sim,
		out:     out,
		printer: message.NewPrinter(language.English),
		running: true,
		byName:  make(map[string]*command),
	}

	s.register(allocatorCommands()...)
	s.register(cacheCommands()...)
	s.register(
		&command{
			names: []string{"help", "?"},
			usage: "help",
			help:  "Show this help message",
			run:   (*Shell).help,
		},
		&command{
			names: []string{"exit", "quit", "bye"},
			usage: "exit",
			help:  "Quit the simulator",
			run:   (*Shell).exit,
		},
	)

	return s
}

func (s *Shell) register(cmds ...*command) {
	for _, c := range cmds {
		for _, name := range c.names {
			if _, dup := s.byName[name]; dup {
				panic("command " + name + " registered twice")
			}

			s.byName[name] = c
		}

		s.commands = append(s.commands, c)
	}
}

// IsRunning returns false once an exit command has been executed.
func (s *Shell) IsRunning() bool {
	return s.running
}

// Execute runs one command line. It returns false if the shell should stop.
func (s *Shell) Execute(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return s.running
	}

	name := strings.ToLower(tokens[0])

	cmd, ok := s.byName[name]
	if !ok {
		s.printf("Unknown command: '%s'. Type 'help' for available commands.\n",
			tokens[0])
		return s.running
	}

	logging.L.Debug("executing command", "command", name, "args", tokens[1:])

	s.sim.Do(func() {
		cmd.run(s, tokens[1:])
	})

	return s.running
}

// Run prints the welcome message and then executes commands read from in
// until an exit command, the end of the input or the cancellation of ctx.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.Welcome()

	scanner := bufio.NewScanner(in)
	for s.running {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("%s", Prompt)

		if !scanner.Scan() {
			s.printf("\n")
			break
		}

		s.Execute(scanner.Text())
	}

	return scanner.Err()
}

// Welcome prints the banner shown when an interactive session starts.
func (s *Shell) Welcome() {
	s.printf("===========================================\n")
	s.printf("  Physical Memory Management Simulator\n")
	s.printf("===========================================\n")
	s.printf("Type 'help' to see available commands\n")
	s.printf("Type 'exit' to quit the simulator\n\n")
}

func (s *Shell) help(_ []string) {
	s.printf("\n--- Available Commands ---\n")
	for _, c := range s.commands {
		s.printf("%-36s - %s\n", c.usage, c.help)
	}
	s.printf("Numbers may be decimal or 0x-prefixed hexadecimal.\n")
	s.printf("-------------------------\n")
}

func (s *Shell) exit(_ []string) {
	s.printf("Goodbye!\n")
	s.running = false
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// report prints with digit grouping, for the statistics reports.
func (s *Shell) report(format string, args ...any) {
	s.printer.Fprintf(s.out, format, args...)
}
