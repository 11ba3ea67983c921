package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-colorable"

	"keel/internal/scenario"
	"keel/kernel"
)

const ansiReset = "\x1b[0m"

func stateANSI(s kernel.State) string {
	switch s {
	case kernel.StateRunning:
		return "\x1b[32m" // green
	case kernel.StateReady:
		return "\x1b[36m" // cyan
	case kernel.StateSleeping:
		return "\x1b[34m" // blue
	case kernel.StateBlocked:
		return "\x1b[33m" // yellow
	case kernel.StateSuspended:
		return "\x1b[35m" // magenta
	default:
		return "\x1b[31m" // red
	}
}

// runTrace samples the kernel and prints one colored state line per
// sample. It returns when ctx is cancelled or the tick budget is spent.
func runTrace(ctx context.Context, k *kernel.Kernel, sc *scenario.Scenario) error {
	out := colorable.NewColorableStdout()
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	var infos []kernel.TaskInfo
	var b strings.Builder
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			tick := k.Ticks()
			infos = k.Snapshot(infos[:0])

			b.Reset()
			fmt.Fprintf(&b, "[%8d]", tick)
			for _, info := range infos {
				fmt.Fprintf(&b, "  %s%s:%s%s", stateANSI(info.State), info.Name, info.State, ansiReset)
			}
			fmt.Fprintln(out, b.String())

			if sc.Ticks > 0 && tick >= sc.Ticks {
				return nil
			}
		}
	}
}
