package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmatx/bmsnode/internal/adapter"
	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/sample"
)

var cmdOut = os.Stdout

func newDemoAdapterCmd() *cobra.Command {
	var (
		count int
		seed  uint32
	)

	cmd := &cobra.Command{
		Use:   "demo-adapter",
		Short: "Print synthetic samples from the demo battery adapter",
		Long:  "Exercises the demo adapter standalone, without the queue, aggregator or state machine, for inspecting its fault-injection behavior.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemoAdapter(count, seed)
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of samples to print")
	cmd.Flags().Uint32Var(&seed, "seed", 0, "xorshift32 seed (0 uses the platform fallback seed)")
	return cmd
}

func runDemoAdapter(count int, seed uint32) error {
	lim := config.Default().ToLimits()

	tick := uint64(0)
	clock := func() uint64 {
		tick++
		return tick
	}

	a := adapter.NewDemoAdapter(lim, seed, clock)
	if err := a.Init(); err != nil {
		return fmt.Errorf("adapter init: %w", err)
	}

	enc := json.NewEncoder(cmdOut)
	for i := 0; i < count; i++ {
		var s sample.Sample
		if err := a.ReadSample(&s); err != nil {
			return fmt.Errorf("read sample %d: %w", i, err)
		}
		if err := enc.Encode(s); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}
