// Package progress reports run progress to the terminal: either a
// fractional bar drawn with tcell, or a raw periodic status line matching
// the driver's own every-N-instructions print.
package progress

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
)

// Reporter is updated as instructions retire and finalized once at the end
// of the run.
type Reporter interface {
	Update(done, total uint64)
	Finish()
}

// None is a no-op Reporter used when neither a bar nor periodic status line
// is requested.
type None struct{}

func (None) Update(uint64, uint64) {}
func (None) Finish()               {}

// Periodic prints a raw status line every Interval instructions, matching
// the reference driver's unconditional print every 10,000,000 cycles when
// no fractional progress bar is active.
type Periodic struct {
	Interval uint64
	last     uint64
}

func (p *Periodic) Update(done, total uint64) {
	if p.Interval == 0 || done-p.last < p.Interval {
		return
	}
	p.last = done
	fmt.Fprintf(os.Stderr, "instructions: %d/%d\n", done, total)
}

func (p *Periodic) Finish() {
	fmt.Fprintln(os.Stderr)
}

// Bar draws a single-line fractional progress bar using tcell, Size
// characters wide.
type Bar struct {
	Size   int
	screen tcell.Screen
}

// NewBar initializes a tcell screen for drawing the bar. If the terminal
// cannot be acquired, it falls back to a disabled screen rather than
// failing the run.
func NewBar(size int) *Bar {
	b := &Bar{Size: size}
	screen, err := tcell.NewScreen()
	if err != nil {
		return b
	}
	if err := screen.Init(); err != nil {
		return b
	}
	b.screen = screen
	return b
}

func (b *Bar) Update(done, total uint64) {
	if b.screen == nil || b.Size <= 0 {
		return
	}
	filled := 0
	if total > 0 {
		filled = int(done * uint64(b.Size) / total)
		if filled > b.Size {
			filled = b.Size
		}
	}
	b.screen.Clear()
	style := tcell.StyleDefault
	for i := 0; i < b.Size; i++ {
		ch := ' '
		if i < filled {
			ch = '#'
		}
		b.screen.SetContent(i, 0, ch, nil, style)
	}
	b.screen.Show()
}

func (b *Bar) Finish() {
	if b.screen == nil {
		return
	}
	b.screen.Fini()
}
