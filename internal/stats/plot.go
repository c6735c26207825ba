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

// Band marks a target range on the value axis.
type Band struct {
	Min float64
	Max float64
}

// PlotOptions controls the chart size and decoration.
type PlotOptions struct {
	Width  int
	Height int
	// Unit is appended to the axis labels.
	Unit  string
	Band  *Band
	Color bool
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisReserve         = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	axisPlain           = " │ "
	axisBand            = " ┃ "
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
	"\x1b[32m", // green
}

// PlotSeries renders a braille line chart of the series on a shared value axis.
// Axis rows that fall inside opts.Band are drawn with a heavy separator.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	series = nonEmptySeries(series)
	if len(series) == 0 {
		return nil
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	lo, hi := axisRange(series, opts.Band)
	dotRows := height * 4
	layers := make([][][]uint8, len(series))
	for si, s := range series {
		cells := makeCells(height, width)
		points := resampleSeries(s.Values, width*2)
		prevX, prevY := -1, -1
		for x, v := range points {
			y := valueToRow(v, lo, hi, dotRows)
			if prevX < 0 {
				setBrailleDot(cells, x, y)
			} else {
				drawLine(prevX, prevY, x, y, func(dx, dy int) { setBrailleDot(cells, dx, dy) })
			}
			prevX, prevY = x, y
		}
		layers[si] = cells
	}

	useColor := opts.Color && os.Getenv("NO_COLOR") == ""
	labels, labelWidth := axisLabels(lo, hi, height, opts.Unit)

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for y := 0; y < height; y++ {
		sep := axisPlain
		if opts.Band != nil && rowInBand(y, height, lo, hi, *opts.Band) {
			sep = axisBand
		}
		b.WriteString(runewidth.FillLeft(labels[y], labelWidth))
		b.WriteString(sep)
		for x := 0; x < width; x++ {
			mask, owner := composeCell(layers, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				b.WriteString(colorPalette[owner%len(colorPalette)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(renderLegend(series, opts.Band, opts.Unit, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth-axisReserve < minPlotWidth {
		return minPlotWidth
	}
	return totalWidth - axisReserve
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func nonEmptySeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func axisRange(series []Series, band *Band) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		l, h := minMax(s.Values)
		lo, hi = math.Min(lo, l), math.Max(hi, h)
	}
	if band != nil {
		lo, hi = math.Min(lo, band.Min), math.Max(hi, band.Max)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

func axisLabels(lo, hi float64, height int, unit string) ([]string, int) {
	labels := make([]string, height)
	labels[0] = fmt.Sprintf("%.1f%s", hi, unit)
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.1f%s", lo, unit)
	}
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.1f%s", rowValue(height/2, height, lo, hi), unit)
	}
	width := 0
	for _, l := range labels {
		width = max(width, runewidth.StringWidth(l))
	}
	return labels, width
}

// rowValue is the value at the vertical center of text row y.
func rowValue(y, height int, lo, hi float64) float64 {
	if height <= 1 {
		return hi
	}
	return hi - (hi-lo)*float64(y)/float64(height-1)
}

func rowInBand(y, height int, lo, hi float64, band Band) bool {
	v := rowValue(y, height, lo, hi)
	half := (hi - lo) / float64(max(height-1, 1)) / 2
	return v+half >= band.Min && v-half <= band.Max
}

func renderLegend(series []Series, band *Band, unit string, useColor bool) string {
	parts := make([]string, 0, len(series)+1)
	for i, s := range series {
		label := "⣿ " + s.Name
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	if band != nil {
		parts = append(parts, fmt.Sprintf("┃ target %.1f-%.1f%s", band.Min, band.Max, unit))
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of every layer; the first layer with dots owns the color.
func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, cells := range layers {
		if m := cells[y][x]; m != 0 {
			if owner < 0 {
				owner = i
			}
			mask |= m
		}
	}
	return mask, owner
}

// resampleSeries averages down or linearly interpolates up to n points.
func resampleSeries(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) >= n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			out[i] = Mean(values[start:end])
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func valueToRow(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	return clampInt(int(math.Round((1-pos)*float64(rows-1))), 0, rows-1)
}

// drawLine walks the Bresenham line between two dot positions.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setBrailleDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBits[x%2][y%4]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
