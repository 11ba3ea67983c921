package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"keel/internal/scenario"
	"keel/kernel"
)

const (
	labelWidth = 150
	cellWidth  = 3
	histCells  = 200
	rowHeight  = 18
)

func stateColor(s kernel.State) color.RGBA {
	switch s {
	case kernel.StateRunning:
		return color.RGBA{0x2e, 0xcc, 0x40, 0xff}
	case kernel.StateReady:
		return color.RGBA{0x39, 0xcc, 0xcc, 0xff}
	case kernel.StateSleeping:
		return color.RGBA{0x00, 0x4e, 0xcc, 0xff}
	case kernel.StateBlocked:
		return color.RGBA{0xff, 0xdc, 0x00, 0xff}
	case kernel.StateSuspended:
		return color.RGBA{0xb1, 0x0d, 0xc9, 0xff}
	default:
		return color.RGBA{0xff, 0x41, 0x36, 0xff}
	}
}

type monitorRow struct {
	id   kernel.TaskID
	name string
	last kernel.State
	hist []kernel.State
}

// monitor is an ebiten game drawing one state-timeline row per task.
type monitor struct {
	ctx    context.Context
	k      *kernel.Kernel
	budget uint64

	rows  []monitorRow
	byID  map[kernel.TaskID]int
	infos []kernel.TaskInfo
}

func (m *monitor) Update() error {
	if m.ctx.Err() != nil {
		return ebiten.Termination
	}

	m.infos = m.k.Snapshot(m.infos[:0])
	seen := map[kernel.TaskID]bool{}
	for _, info := range m.infos {
		seen[info.ID] = true
		i, ok := m.byID[info.ID]
		if !ok {
			i = len(m.rows)
			m.rows = append(m.rows, monitorRow{id: info.ID, name: info.Name})
			m.byID[info.ID] = i
		}
		m.rows[i].last = info.State
	}
	for i := range m.rows {
		if !seen[m.rows[i].id] {
			m.rows[i].last = kernel.StateTerminated
		}
		m.rows[i].hist = append(m.rows[i].hist, m.rows[i].last)
		if len(m.rows[i].hist) > histCells {
			m.rows[i].hist = m.rows[i].hist[1:]
		}
	}

	if m.budget > 0 && m.k.Ticks() >= m.budget {
		return ebiten.Termination
	}
	return nil
}

func (m *monitor) Draw(screen *ebiten.Image) {
	for i := range m.rows {
		row := &m.rows[i]
		y := float32(i * rowHeight)
		for j, s := range row.hist {
			vector.DrawFilledRect(screen,
				labelWidth+float32(j*cellWidth), y+2,
				cellWidth, rowHeight-4,
				stateColor(s), false)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-10s %s", row.name, row.last), 4, i*rowHeight+2)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("tick %d", m.k.Ticks()), 4, len(m.rows)*rowHeight+4)
}

func (m *monitor) Layout(outsideWidth, outsideHeight int) (int, int) {
	rows := len(m.rows)
	if rows == 0 {
		rows = 1
	}
	return labelWidth + histCells*cellWidth, rows*rowHeight + 24
}

// runMonitor opens the task-state window and blocks until it is closed,
// ctx is cancelled, or the tick budget is spent.
func runMonitor(ctx context.Context, k *kernel.Kernel, sc *scenario.Scenario) error {
	ebiten.SetWindowTitle("keelsim")
	ebiten.SetWindowSize(labelWidth+histCells*cellWidth, (len(sc.Tasks)+2)*rowHeight+24)
	ebiten.SetTPS(60)
	return ebiten.RunGame(&monitor{
		ctx:    ctx,
		k:      k,
		budget: sc.Ticks,
		byID:   map[kernel.TaskID]int{},
	})
}
