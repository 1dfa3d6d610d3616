package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions sizes a plot. Zero width fills the terminal; zero height uses
// the default. Color forces ANSI colors even when w is not a terminal.
type PlotOptions struct {
	Width  int
	Height int
	Color  bool
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// dashes gives each series its own stroke pattern so plots stay readable
// without color: on-length and period in dot columns.
var dashes = []struct {
	name       string
	on, period int
}{
	{"solid", 1, 1},
	{"dashed", 3, 6},
	{"dotted", 1, 3},
}

// canvas is a grid of braille cells, each holding 2x4 dots.
type canvas struct {
	width, height int
	dots          [][]uint8
	owner         [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.dots = make([][]uint8, height)
	c.owner = make([][]int, height)
	for y := range c.dots {
		c.dots[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

// braille dot bits indexed by [dy][dx] within a cell.
var dotBits = [4][2]uint8{{0x01, 0x08}, {0x02, 0x10}, {0x04, 0x20}, {0x40, 0x80}}

func (c *canvas) set(x, y, series int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.dots[cy][cx] |= dotBits[y%4][x%2]
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// line draws from (x0,y0) to (x1,y1) with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1, series int) {
	dash := dashes[series%len(dashes)]
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if x0%dash.period < dash.on {
			c.set(x0, y0, series)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy && x0 != x1 {
			e += dy
			x0 += sx
		}
		if e2 <= dx && y0 != y1 {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) cell(x, y int) (rune, int) {
	return rune(0x2800 + int(c.dots[y][x])), c.owner[y][x]
}

// PlotSeries renders a braille line plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	width, height := opts.Width, opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	c := newCanvas(width, height)
	rows := height * 4
	lines := []string{title, scaleNote}
	for si, s := range kept {
		values := resample(s.Values, width)
		lo, hi := seriesRange(values)
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", s.Name, lo, hi))
		prevX, prevY := -1, -1
		for x, v := range values {
			y := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(rows-1)))
			y = max(0, min(rows-1, y))
			if prevX < 0 {
				c.set(x*2, y, si)
			} else {
				c.line(prevX, prevY, x*2, y, si)
			}
			prevX, prevY = x*2, y
		}
	}

	useColor := shouldUseColor(w, opts.Color)
	labelWidth := max(runewidth.StringWidth(axisLabelTop), runewidth.StringWidth(axisLabelBottom))
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisLabelTop
		case height - 1:
			label = axisLabelBottom
		}
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(label, labelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			ch, owner := c.cell(x, y)
			if useColor && owner >= 0 {
				row.WriteString(seriesColors[owner%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		lines = append(lines, row.String())
	}

	legend := make([]string, len(kept))
	for i, s := range kept {
		item := fmt.Sprintf("%c %s (%s)", rune(0x2801), s.Name, dashes[i%len(dashes)].name)
		if useColor {
			item = seriesColors[i%len(seriesColors)] + item + colorReset
		}
		legend[i] = item
	}
	lines = append(lines, "Legend: "+strings.Join(legend, "  "), "")

	if title == "" {
		lines = lines[1:]
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := max(runewidth.StringWidth(axisLabelTop), runewidth.StringWidth(axisLabelBottom)) +
		runewidth.StringWidth(axisSeparator)
	return max(minPlotWidth, totalWidth-axis)
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := max(start+1, (i+1)*n/width)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := min(int(pos), n-2)
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func seriesRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
