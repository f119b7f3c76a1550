package cmd

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/workload"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Replay a random workload under every placement strategy.",
	Long: "`compare` generates a reproducible trace of allocations and frees " +
		"and replays it on a fresh pool with first fit, best fit and worst " +
		"fit, then prints the statistics of each.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		spec := workload.DefaultSpec()

		pool, _ := flags.GetUint64("pool")
		spec.Ops, _ = flags.GetInt("ops")
		spec.Seed, _ = flags.GetInt64("seed")
		spec.MinSize, _ = flags.GetUint64("min")
		spec.MaxSize, _ = flags.GetUint64("max")
		spec.FreeRatio, _ = flags.GetFloat64("free-ratio")

		if err := spec.Validate(); err != nil {
			return err
		}

		ops := workload.Generate(spec)
		logging.L.Info("comparing strategies",
			"pool", pool, "ops", len(ops), "seed", spec.Seed)

		printComparison(cmd.OutOrStdout(), workload.Compare(pool, ops))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	defaults := workload.DefaultSpec()

	flags := compareCmd.Flags()
	flags.Uint64("pool", 64*mem.KB, "Pool size in bytes")
	flags.Int("ops", defaults.Ops, "Number of operations in the trace")
	flags.Int64("seed", defaults.Seed, "Random seed")
	flags.Uint64("min", defaults.MinSize, "Smallest request in bytes")
	flags.Uint64("max", defaults.MaxSize, "Largest request in bytes")
	flags.Float64("free-ratio", defaults.FreeRatio,
		"Share of operations that free a live block")
}

func printComparison(out io.Writer, results []workload.Result) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	p.Fprintf(w, "Strategy\tRequests\tFailed\tSuccess\tUtilization\t"+
		"Ext. frag.\tLargest free\tFree segments\t\n")

	for _, r := range results {
		p.Fprintf(w, "%s\t%d\t%d\t%.2f%%\t%.2f%%\t%.2f%%\t%d\t%d\t\n",
			r.Strategy.DisplayName(),
			r.Stats.Attempts,
			r.Stats.Failures,
			r.Stats.SuccessRate(),
			r.Fragmentation.Utilization(),
			r.Fragmentation.ExternalFragmentation(),
			r.Fragmentation.LargestFreeBlock,
			r.Fragmentation.FreeSegments)
	}

	w.Flush()
}
