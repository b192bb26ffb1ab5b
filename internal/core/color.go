package core

// Color is a semantic palette slot. The renderer decides the actual
// terminal colour for each slot.
type Color uint8

const (
	ColorDefault Color = iota
	ColorSky
	ColorTerrain
	ColorTerrainEdge
	ColorTank0
	ColorTank1
	ColorShell
	ColorTrail
	ColorExplosion
	ColorText
	ColorDim
	ColorWarn
)

// TankColor returns the palette slot for a player's tank.
func TankColor(player int) Color {
	if player == 1 {
		return ColorTank1
	}
	return ColorTank0
}
