package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hivebound/hivebound/internal/game"
)

func main() {
	ebiten.SetWindowTitle("Hivebound")
	ebiten.SetWindowSize(1600, 900)
	if err := ebiten.RunGame(game.New()); err != nil {
		log.Fatal(err)
	}
}
