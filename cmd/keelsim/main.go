// keelsim runs the kernel on the host port with a simulated tick, either
// headless (colored state trace on stdout) or with a monitor window
// showing a per-task state timeline. Task sets come from a YAML scenario
// file or the built-in demo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"keel/internal/buildinfo"
	"keel/internal/scenario"
	"keel/kernel"
	"keel/port"
)

func main() {
	var (
		headless = flag.Bool("headless", false, "Run without a window.")
		hz       = flag.Int("hz", 0, "Override the scenario tick rate.")
		ticks    = flag.Uint64("ticks", 0, "Stop after N ticks (0 = scenario setting).")
		scPath   = flag.String("scenario", "", "Scenario YAML file (default: built-in demo).")
		version  = flag.Bool("version", false, "Print version and exit.")
	)
	flag.Parse()

	if *version {
		fmt.Println("keelsim", buildinfo.Short())
		return
	}

	sc := scenario.Default()
	if *scPath != "" {
		loaded, err := scenario.Load(*scPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sc = loaded
	}
	if *hz > 0 {
		sc.Hz = *hz
	}
	if *ticks > 0 {
		sc.Ticks = *ticks
	}

	if err := run(sc, *headless); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(sc *scenario.Scenario, headless bool) error {
	h := port.NewHost()
	k, err := kernel.New(h, kernel.Config{
		Arena:      make([]byte, sc.ArenaKB<<10),
		SliceTicks: sc.SliceTicks,
	})
	if err != nil {
		return fmt.Errorf("kernel: %w", err)
	}
	if err := spawnAll(k, sc); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.RunTicker(ctx, sc.Hz, k.OnTick); err != context.Canceled {
			return err
		}
		return nil
	})

	k.Start()

	if headless {
		g.Go(func() error {
			defer cancel()
			return runTrace(ctx, k, sc)
		})
		return g.Wait()
	}

	// The window loop owns the main goroutine; the tick driver keeps
	// running in the group.
	merr := runMonitor(ctx, k, sc)
	cancel()
	if gerr := g.Wait(); merr == nil {
		merr = gerr
	}
	return merr
}
