package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/shell"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Execute the commands of a script file.",
	Long: "`run <script>` executes one shell command per line. Blank lines " +
		"and lines starting with # are skipped. Use - to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readScript(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := startSession(loaded)
		if err != nil {
			return err
		}
		defer s.close()

		runScript(shell.New(s.sim, cmd.OutOrStdout()), cmd.OutOrStdout(),
			lines, s.monitor)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func readScript(cmd *cobra.Command, path string) ([]string, error) {
	var in io.Reader = cmd.InOrStdin()

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		in = f
	}

	var lines []string

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	return lines, scanner.Err()
}

// runScript echoes every line after the prompt and executes it, until the
// script ends or exits. Progress is reported when a monitor is given.
func runScript(
	sh *shell.Shell,
	out io.Writer,
	lines []string,
	monitor *monitoring.Monitor,
) {
	var bar *monitoring.ProgressBar
	if monitor != nil {
		bar = monitor.CreateProgressBar("script", uint64(len(lines)))
		defer monitor.CompleteProgressBar(bar)
	}

	for _, line := range lines {
		fmt.Fprintf(out, "%s%s\n", shell.Prompt, line)

		running := sh.Execute(line)

		if bar != nil {
			bar.IncrementFinished(1)
		}

		if !running {
			return
		}
	}
}
