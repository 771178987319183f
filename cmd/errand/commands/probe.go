package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/errand/internal/remote"
	"github.com/spf13/cobra"
)

var probeCount int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the remote and show its connection state",
	Long: `Probe the remote N times and print the state after each probe.

In simulated mode every probe is one step of the link's state machine:
a connected link drops with remote.failure_probability, a disconnected one
recovers with remote.reconnect_probability. Transitions are marked.
Set remote.rand_seed for a reproducible sequence.

In redis mode each probe is a PING.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().IntVarP(&probeCount, "count", "n", 10, "Number of probes")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	if probeCount < 1 {
		return p.Error("invalid probe count", fmt.Sprintf("--count must be at least 1, got %d", probeCount), nil)
	}

	a, err := loadApp(cmd, p)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	connected := 0
	for i := 1; i <= probeCount && ctx.Err() == nil; i++ {
		state := probeOnce(ctx, a.Link, a.Facade)
		line := fmt.Sprintf("probe %d: %s", i, state.current)
		if state.changed {
			line += fmt.Sprintf(" (was %s)", state.previous)
		}
		p.Println(line)

		if state.current == remote.StateConnected {
			connected++
		}
	}

	p.Printf("\n%d/%d probes connected\n", connected, probeCount)
	return nil
}

type probeResult struct {
	previous remote.State
	current  remote.State
	changed  bool
}

// probeOnce advances a simulated link, or pings any other facade
func probeOnce(ctx context.Context, link *remote.Link, facade remote.Facade) probeResult {
	if link != nil {
		before := link.State()
		after := link.Probe(ctx)
		return probeResult{previous: before, current: after, changed: before != after}
	}

	state := remote.StateDisconnected
	if facade.IsConnected(ctx) {
		state = remote.StateConnected
	}
	return probeResult{current: state}
}
