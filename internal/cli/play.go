package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

// Canvas resolution: one terminal cell covers cellW x cellH canvas units.
const (
	cellW      = 10.0
	cellH      = 20.0
	canvasCols = 72
	canvasRows = 22
)

// Play styles
var (
	playShapeStyle    = lipgloss.NewStyle().Foreground(colorGray)
	playSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playRouteStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	playBendStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	playAnchorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	playErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	playFrameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

type playOpts struct {
	from, to   string
	start, end string
	step       float64
}

// playCommand creates the interactive repair playground.
func (c *CLI) playCommand() *cobra.Command {
	opts := playOpts{from: "0,0,100,100", to: "300,200,100,100", step: 20}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drag two shapes around and watch their connection being repaired",
		Long: `Open an interactive canvas with two connected shapes.

  ←↑→↓ / hjkl  move the selected shape
  tab          select the other shape
  r            route from scratch
  q            quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := connectRequest(connectOpts{from: opts.from, to: opts.to, start: opts.start, end: opts.end})
			if err != nil {
				return err
			}
			m, err := newPlayModel(c.config.Layouter(), req, opts.step)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", opts.from, "first rectangle x,y,w,h")
	cmd.Flags().StringVar(&opts.to, "to", opts.to, "second rectangle x,y,w,h")
	cmd.Flags().StringVar(&opts.start, "start", "", "pinned side of the first shape")
	cmd.Flags().StringVar(&opts.end, "end", "", "pinned side of the second shape")
	cmd.Flags().Float64Var(&opts.step, "step", opts.step, "distance moved per key press")
	_ = cmd.RegisterFlagCompletionFunc("start", completeDirections)
	_ = cmd.RegisterFlagCompletionFunc("end", completeDirections)

	return cmd
}

// =============================================================================
// playModel - interactive repair canvas
// =============================================================================

// playModel is the bubbletea model behind "orthoroute play". Every move runs
// a repair against the previous route, so what is shown is exactly what an
// editor would get.
type playModel struct {
	layouter   *manhattan.Layouter
	rects      [2]geom.Rect
	start, end geom.Direction
	step       float64

	route    []geom.Bend
	selected int
	last     manhattan.Repair
	moves    int
	err      error
}

func newPlayModel(l *manhattan.Layouter, req manhattan.ConnectRequest, step float64) (playModel, error) {
	m := playModel{
		layouter: l,
		rects:    [2]geom.Rect{req.Source, req.Target},
		start:    req.Start,
		end:      req.End,
		step:     step,
	}
	if err := m.relayout(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *playModel) relayout() error {
	wp, err := m.layouter.ConnectRectangles(m.rects[0], m.rects[1], m.start, m.end)
	if err != nil {
		return err
	}
	m.route = wp
	m.last = manhattan.Repair{Waypoints: wp, Kind: manhattan.RepairRelayout, Reason: "routed from scratch"}
	return nil
}

// move shifts the selected shape and repairs the route. A failed repair
// leaves the model untouched apart from the error.
func (m *playModel) move(d geom.Point) {
	rects := m.rects
	rects[m.selected] = rects[m.selected].Translate(d)

	rep, err := m.layouter.RepairConnection(rects[0], rects[1], m.start, m.end, m.route)
	if err != nil {
		m.err = err
		return
	}
	m.rects = rects
	m.route = rep.Waypoints
	m.last = rep
	m.moves++
	m.err = nil
}

func (m playModel) Init() tea.Cmd {
	return nil
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.selected = 1 - m.selected
	case "left", "h":
		m.move(geom.Pt(-m.step, 0))
	case "right", "l":
		m.move(geom.Pt(m.step, 0))
	case "up", "k":
		m.move(geom.Pt(0, -m.step))
	case "down", "j":
		m.move(geom.Pt(0, m.step))
	case "r":
		if err := m.relayout(); err != nil {
			m.err = err
		}
	}
	return m, nil
}

func (m playModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("orthoroute play"))
	b.WriteString("\n\n")
	b.WriteString(playFrameStyle.Render(m.canvas().String()))
	b.WriteString("\n")

	parts := []string{m.last.Kind.String()}
	if pair := manhattan.PairOf(m.route); pair != geom.PairNone {
		parts = append(parts, pair.String())
	}
	b.WriteString(routeSummary(len(m.route), parts, false))
	b.WriteString("\n")
	if m.last.Reason != "" {
		b.WriteString("  " + StyleDim.Render(m.last.Reason) + "\n")
	}
	if m.err != nil {
		b.WriteString("  " + playErrorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  moves: %d · ←↑→↓ move · tab select · r relayout · q quit", m.moves)))

	return b.String()
}

// =============================================================================
// Canvas
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellShape
	cellSelected
	cellRoute
	cellBend
	cellAnchor
)

type cell struct {
	r    rune
	kind cellKind
}

// canvas is a character grid of the scene.
type canvas [canvasRows][canvasCols]cell

func (m playModel) canvas() *canvas {
	cv := new(canvas)
	for i := range cv {
		for j := range cv[i] {
			cv[i][j] = cell{' ', cellEmpty}
		}
	}

	for i, r := range m.rects {
		kind := cellShape
		if i == m.selected {
			kind = cellSelected
		}
		cv.rect(r, kind, rune('A'+i))
	}

	for i := 1; i < len(m.route); i++ {
		cv.segment(m.route[i-1].Point, m.route[i].Point)
	}
	for i, b := range m.route {
		kind, r := cellBend, '•'
		if b.Anchor != nil && (i == 0 || i == len(m.route)-1) {
			kind, r = cellAnchor, '◆'
		}
		cv.set(toCell(b.Point), cell{r, kind})
	}
	return cv
}

type cellPos struct{ row, col int }

func toCell(p geom.Point) cellPos {
	return cellPos{row: int(math.Round(p.Y / cellH)), col: int(math.Round(p.X / cellW))}
}

func (cv *canvas) set(p cellPos, c cell) {
	if p.row < 0 || p.row >= canvasRows || p.col < 0 || p.col >= canvasCols {
		return
	}
	cv[p.row][p.col] = c
}

func (cv *canvas) rect(r geom.Rect, kind cellKind, label rune) {
	tl := toCell(geom.Pt(r.Left(), r.Top()))
	br := toCell(geom.Pt(r.Right(), r.Bottom()))
	for col := tl.col; col <= br.col; col++ {
		cv.set(cellPos{tl.row, col}, cell{'─', kind})
		cv.set(cellPos{br.row, col}, cell{'─', kind})
	}
	for row := tl.row; row <= br.row; row++ {
		cv.set(cellPos{row, tl.col}, cell{'│', kind})
		cv.set(cellPos{row, br.col}, cell{'│', kind})
	}
	cv.set(tl, cell{'╭', kind})
	cv.set(cellPos{tl.row, br.col}, cell{'╮', kind})
	cv.set(cellPos{br.row, tl.col}, cell{'╰', kind})
	cv.set(br, cell{'╯', kind})
	cv.set(toCell(r.Center()), cell{label, kind})
}

// segment draws an axis-aligned run; diagonal (free-flow) segments only get
// their endpoints.
func (cv *canvas) segment(a, b geom.Point) {
	pa, pb := toCell(a), toCell(b)
	switch {
	case pa.row == pb.row:
		for col := min(pa.col, pb.col); col <= max(pa.col, pb.col); col++ {
			cv.set(cellPos{pa.row, col}, cell{'─', cellRoute})
		}
	case pa.col == pb.col:
		for row := min(pa.row, pb.row); row <= max(pa.row, pb.row); row++ {
			cv.set(cellPos{row, pa.col}, cell{'│', cellRoute})
		}
	}
}

func (cv *canvas) String() string {
	var b strings.Builder
	for i, row := range cv {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			s := string(c.r)
			switch c.kind {
			case cellShape:
				s = playShapeStyle.Render(s)
			case cellSelected:
				s = playSelectedStyle.Render(s)
			case cellRoute:
				s = playRouteStyle.Render(s)
			case cellBend:
				s = playBendStyle.Render(s)
			case cellAnchor:
				s = playAnchorStyle.Render(s)
			}
			b.WriteString(s)
		}
	}
	return b.String()
}
