package ohlc

import (
	"io"
	"strings"
	"sync"
)

const (
	wick     = '│'
	bullBody = '┃'
	bearBody = '█'
	blank    = ' '
)

// Chart keeps the last candles fitting its width and renders them as text lines, one column per candle.
type Chart struct {
	mu      sync.Mutex
	width   int
	height  int
	candles []Ohlc
}

// NewChart builds an empty chart. Sizes lower than 1 are set to 1.
func NewChart(width, height int) *Chart {
	c := &Chart{}
	c.Resize(width, height)
	return c
}

// Add appends a candle, dropping the oldest ones which don't fit anymore.
func (c *Chart) Add(o Ohlc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candles = append(c.candles, o)
	c.trim()
}

// Resize changes the chart size. A size lower than 1 is set to 1.
func (c *Chart) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.trim()
}

// Size returns the chart width and height.
func (c *Chart) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Len returns the number of candles displayed.
func (c *Chart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.candles)
}

func (c *Chart) trim() {
	if n := len(c.candles) - c.width; n > 0 {
		c.candles = append(c.candles[:0], c.candles[n:]...)
	}
}

// Lines renders the chart, highest prices first. Each line is padded to the chart width.
func (c *Chart) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	grid := make([][]rune, c.height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(blank), c.width))
	}
	if len(c.candles) == 0 {
		return toStrings(grid)
	}

	lo, hi := c.candles[0].Low, c.candles[0].High
	for _, o := range c.candles[1:] {
		lo, hi = min(lo, o.Low), max(hi, o.High)
	}
	row := func(price float64) int {
		if hi == lo {
			return c.height - 1
		}
		// row 0 is the top line
		return c.height - 1 - int((price-lo)/(hi-lo)*float64(c.height-1)+0.5)
	}

	for x, o := range c.candles {
		body := bearBody
		if o.Bullish() {
			body = bullBody
		}
		top, bottom := row(max(o.Open, o.Close)), row(min(o.Open, o.Close))
		for y := row(o.High); y <= row(o.Low); y++ {
			if y >= top && y <= bottom {
				grid[y][x] = body
			} else {
				grid[y][x] = wick
			}
		}
	}
	return toStrings(grid)
}

func toStrings(grid [][]rune) []string {
	lines := make([]string, len(grid))
	for i, l := range grid {
		lines[i] = string(l)
	}
	return lines
}

// ChartSink adds each accepted candle to a chart, then renders the chart to a writer.
type ChartSink struct {
	chart *Chart
	mu    sync.Mutex
	out   io.Writer
	clear bool
}

// NewChartSink builds a sink drawing chart to out. With clear, the terminal screen is cleared before each rendering.
func NewChartSink(chart *Chart, out io.Writer, clear bool) *ChartSink {
	return &ChartSink{chart: chart, out: out, clear: clear}
}

// Accept validates the candle, adds it to the chart and renders it.
func (s *ChartSink) Accept(o Ohlc) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.chart.Add(o)
	return s.Render()
}

// Render writes the chart lines.
func (s *ChartSink) Render() error {
	lines := s.chart.Lines()

	var b strings.Builder
	if s.clear {
		b.WriteString("\x1b[H\x1b[2J")
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, b.String())
	return err
}
