package ebitenplot

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game is a minimal ebiten.Game that hosts a single Layer.
type Game struct {
	Layer      *Layer
	Width      int
	Height     int
	Background color.Color
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	return g.Layer.Update()
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.Background != nil {
		screen.Fill(g.Background)
	}
	g.Layer.Draw(screen)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.Width, g.Height
}

// Run opens a window and runs g until it is closed.
func Run(title string, g *Game) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.Width, g.Height)
	return ebiten.RunGame(g)
}
