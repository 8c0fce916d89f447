package world

import (
	"strings"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorGray  = "\033[90m"
)

const (
	EmptySymbol    = "·"
	ObstacleSymbol = "▲"
	DeadSymbol     = "x"
)

var sideColors = [...]string{core.SidePlayer: ColorBlue, core.SideEnemy: ColorRed}
var sideSymbols = [...]byte{core.SidePlayer: 'P', core.SideEnemy: 'E'}

// Render returns a two-character-per-cell drawing of the state. Units show
// their side letter and health (+ for 10 or more); dead units show x.
func (s *State) Render(color bool) string {
	width := s.maxX + 1
	height := s.maxY + 1

	cells := make(map[core.Coordinate]core.Unit, len(s.units[0])+len(s.units[1]))
	for _, side := range s.units {
		for _, u := range side {
			cells[u.Pos] = u
		}
	}
	blocked := make(map[core.Coordinate]struct{}, len(s.obstacles))
	for _, c := range s.obstacles {
		blocked[c] = struct{}{}
	}

	var sb strings.Builder
	sb.Grow((width*3+4)*(height+3) + 64)

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteString(core.IntToStringFixedWidth(x, 3))
	}
	sb.WriteString("\n")

	for y := 0; y < height; y++ {
		sb.WriteString(core.IntToStringFixedWidth(y, 2))
		sb.WriteString(" ")
		for x := 0; x < width; x++ {
			c := core.NewCoordinate(x, y)
			sb.WriteString(" ")
			if u, ok := cells[c]; ok {
				writeUnit(&sb, u, color)
				continue
			}
			if _, ok := blocked[c]; ok {
				writeColored(&sb, ColorGray, " "+ObstacleSymbol, color)
				continue
			}
			writeColored(&sb, ColorGray, " "+EmptySymbol, color)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(EmptySymbol + "=empty " + ObstacleSymbol + "=obstacle P=player E=enemy " + DeadSymbol + "=dead\n")
	return sb.String()
}

func writeUnit(sb *strings.Builder, u core.Unit, color bool) {
	var cell strings.Builder
	cell.WriteByte(sideSymbols[u.Side])
	switch {
	case u.IsDead():
		cell.WriteString(DeadSymbol)
	case u.Health >= 10:
		cell.WriteString("+")
	default:
		cell.WriteString(core.IntToStringFixedWidth(u.Health, 1))
	}
	writeColored(sb, sideColors[u.Side], cell.String(), color)
}

func writeColored(sb *strings.Builder, c, text string, color bool) {
	if !color {
		sb.WriteString(text)
		return
	}
	sb.WriteString(c)
	sb.WriteString(text)
	sb.WriteString(ColorReset)
}
