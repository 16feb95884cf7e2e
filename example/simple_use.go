package main

import (
	"context"
	"fmt"
	"os"

	"github.com/leandrodaf/midiguess/internal/engine"
	"github.com/leandrodaf/midiguess/internal/library"
	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"github.com/leandrodaf/midiguess/sdk/game"
)

// Plays a round without audio output: usage simple_use SONGS_DIR SOUNDFONT GUESS
func main() {
	if len(os.Args) != 4 {
		fmt.Println("usage: simple_use SONGS_DIR SOUNDFONT GUESS")
		return
	}
	log := logger.NewZapLogger()

	sf, err := engine.LoadSoundFont(os.Args[2])
	if err != nil {
		log.Error("Failed to load soundfont", log.Field().Error("error", err))
		return
	}

	session, err := game.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithLibrary(library.NewDirLibrary(os.Args[1])),
		contracts.WithDeckFactory(engine.NewDeckFactory(engine.Config{
			NewSynth: engine.SoundFontSynths(sf, 44100),
			Logger:   log,
		})),
		contracts.WithAutoPlay(false),
	)
	if err != nil {
		log.Error("Failed to create session", log.Field().Error("error", err))
		return
	}
	defer session.Close()

	if _, err := session.LoadRandom(context.Background()); err != nil {
		log.Error("Failed to load a song", log.Field().Error("error", err))
		return
	}

	for {
		track, err := session.RevealMore()
		if err != nil {
			fmt.Println("stopped revealing:", err)
			break
		}
		fmt.Printf("revealed track %d (%s)\n", track.ID, track.Priority)
	}

	result, _ := session.SubmitGuess(os.Args[3])
	answer, _ := session.RevealAnswer()
	fmt.Printf("matched=%v answer=%s\n", result.Matched, answer)
}
