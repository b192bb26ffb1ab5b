package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/fixed"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// colorStyles maps palette slots to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:     lipgloss.NewStyle(),
	core.ColorSky:         lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
	core.ColorTerrain:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	core.ColorTerrainEdge: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	core.ColorTank0:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	core.ColorTank1:       lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
	core.ColorShell:       lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	core.ColorTrail:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	core.ColorExplosion:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	core.ColorText:        lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	core.ColorDim:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	core.ColorWarn:        lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
}

func styleFor(c core.Color) lipgloss.Style {
	if s, ok := colorStyles[c]; ok {
		return s
	}
	return colorStyles[core.ColorDefault]
}

// RenderScreen converts a Screen to a styled string, one escape sequence
// per run of same-coloured cells.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, run := range s.Runs(y) {
			sb.WriteString(styleFor(run.Color).Render(run.Text))
		}
	}
	return sb.String()
}

// flash is an explosion still being drawn.
type flash struct {
	x, y   int
	frames int
}

const (
	flashFrames  = 6
	barrelLength = 16
	trailLength  = 24
)

// scene is everything drawWorld needs from a frame.
type scene struct {
	sim     *sim.Simulation
	trail   []point
	flashes []flash
}

type point struct{ x, y int }

// drawWorld paints terrain, tanks, the shell and explosions into the
// screen region above the HUD.
func drawWorld(scr *core.Screen, sc scene, rows int) {
	v := core.NewViewport(sc.sim.Bounds(), scr.Width(), rows)

	for col := 0; col < v.Cols; col++ {
		h := sc.sim.HeightAt(v.ColumnX(col))
		if h <= 0 {
			continue
		}
		_, top := v.Cell(v.ColumnX(col), h-1)
		scr.FillColumn(col, top, rows, '█', core.ColorTerrain)
		if top >= 0 && top < rows {
			scr.Set(col, top, '▀', core.ColorTerrainEdge)
		}
	}

	for _, p := range sc.trail {
		col, row := v.Cell(p.x, p.y)
		if row < rows && scr.Get(col, row).Rune == ' ' {
			scr.Set(col, row, '·', core.ColorTrail)
		}
	}

	for id := 0; id < 2; id++ {
		drawTank(scr, v, sc.sim.Tank(id), rows)
	}

	if p, ok := sc.sim.Projectile(); ok {
		col, row := v.Cell(p.X.ToInt(), p.Y.ToInt())
		if row < rows {
			scr.Set(col, row, '●', core.ColorShell)
		}
	}

	for _, f := range sc.flashes {
		drawFlash(scr, v, f, rows)
	}
}

func drawTank(scr *core.Screen, v core.Viewport, t sim.Tank, rows int) {
	col, row := v.Cell(t.PixelX(), t.PixelY())
	if row < 0 || row >= rows {
		return
	}
	color := core.TankColor(t.ID)
	if !t.Alive {
		scr.DrawText(col-1, row, "x_x", core.ColorDim)
		return
	}
	scr.DrawText(col-1, row, "▟█▙", color)

	tipX := t.PixelX() + fixed.Mul(fixed.FromInt(barrelLength), fixed.Cos(t.AimAngle)).ToInt()
	tipY := t.PixelY() + fixed.Mul(fixed.FromInt(barrelLength), fixed.Sin(t.AimAngle)).ToInt()
	bc, br := v.Cell(tipX, tipY)
	if bc == col && br == row {
		br--
	}
	if br >= 0 && br < rows {
		scr.Set(bc, br, barrelRune(t.AimAngle), color)
	}
}

func barrelRune(angle int) rune {
	switch {
	case angle < 23 || angle > 157:
		return '─'
	case angle < 68:
		return '╱'
	case angle <= 112:
		return '│'
	default:
		return '╲'
	}
}

func drawFlash(scr *core.Screen, v core.Viewport, f flash, rows int) {
	r := sim.ExplosionDeformRadius
	if f.frames < flashFrames/2 {
		r /= 2
	}
	c0, r0 := v.Cell(f.x-r, f.y+r)
	c1, r1 := v.Cell(f.x+r, f.y-r)
	for row := core.Max(r0, 0); row <= core.Min(r1, rows-1); row++ {
		for col := c0; col <= c1; col++ {
			dx, dy := v.ColumnX(col)-f.x, v.RowY(row)-f.y
			if dx*dx+dy*dy <= r*r {
				scr.Set(col, row, '✶', core.ColorExplosion)
			}
		}
	}
}
