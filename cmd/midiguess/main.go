package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/midiguess/internal/config"
	"github.com/leandrodaf/midiguess/internal/engine"
	"github.com/leandrodaf/midiguess/internal/engine/otoout"
	"github.com/leandrodaf/midiguess/internal/guess"
	"github.com/leandrodaf/midiguess/internal/library"
	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/internal/pedal"
	"github.com/leandrodaf/midiguess/internal/view"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"github.com/leandrodaf/midiguess/sdk/game"
	sdkpedal "github.com/leandrodaf/midiguess/sdk/pedal"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file.")
	songsDir := flag.String("songs", "", "Directory with .mid files. Overrides songs_dir.")
	songsURL := flag.String("songs-url", "", "Base URL of a song server. Overrides songs_url.")
	soundFont := flag.String("soundfont", "", "SoundFont (.sf2) used for playback. Overrides soundfont.")
	tokens := flag.Int("tokens", -1, "Reveal tokens per song. Negative keeps the configured value.")
	pedalDevice := flag.Int("pedal", -1, "Index of a MIDI pedal input device. Negative disables the pedal.")
	listPedals := flag.Bool("list-pedals", false, "List MIDI input devices and exit.")
	flag.Parse()

	log := logger.NewZapLogger()

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal("failed to load configuration", log.Field().Error("error", err))
		}
	}
	if *songsDir != "" {
		cfg.SongsDir = *songsDir
	}
	if *songsURL != "" {
		cfg.SongsURL = *songsURL
	}
	if *soundFont != "" {
		cfg.SoundFont = *soundFont
	}
	if *tokens >= 0 {
		cfg.RevealTokens = tokens
	}
	if *pedalDevice >= 0 {
		if cfg.Pedal == nil {
			cfg.Pedal = &config.Pedal{}
		}
		cfg.Pedal.Device = *pedalDevice
	}

	if *listPedals {
		os.Exit(printPedals(log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("midiguess stopped", log.Field().Error("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log contracts.Logger) error {
	if cfg.SoundFont == "" {
		return fmt.Errorf("%w: no soundfont configured", contracts.ErrEngineUnavailable)
	}
	sf, err := engine.LoadSoundFont(cfg.SoundFont)
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrEngineUnavailable, err)
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	engineCfg := engine.Config{
		SampleRate: sampleRate,
		Gain:       cfg.Gain,
		NewSynth:   engine.SoundFontSynths(sf, sampleRate),
		Logger:     log,
	}
	if out, err := otoout.New(ctx, sampleRate); err != nil {
		log.Warn("audio output unavailable; playing silently", log.Field().Error("error", err))
	} else {
		engineCfg.Output = out
	}

	var lib contracts.SongLibrary
	switch {
	case cfg.SongsURL != "":
		lib = library.NewHTTPLibrary(cfg.SongsURL, nil)
	case cfg.SongsDir != "":
		lib = library.NewDirLibrary(cfg.SongsDir)
	default:
		lib = library.NewDirLibrary(".")
	}

	opts := append(cfg.Options(guess.DefaultMatchConfig()),
		contracts.WithLogger(log),
		contracts.WithLibrary(lib),
		contracts.WithDeckFactory(engine.NewDeckFactory(engineCfg)),
	)
	session, err := game.NewSession(opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	renderer, err := view.New()
	if err != nil {
		return err
	}
	r := &repl{ctx: ctx, session: session, view: renderer, out: os.Stdout}

	if cfg.Pedal != nil {
		stopPedal, err := startPedal(ctx, cfg.Pedal, session, r, log)
		if err != nil {
			log.Warn("pedal disabled", log.Field().Error("error", err))
		} else {
			defer stopPedal()
		}
	}

	if _, err := session.LoadRandom(ctx); err != nil {
		r.report(err)
	} else {
		r.status()
	}

	done := make(chan error, 1)
	go func() { done <- r.run(os.Stdin) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func startPedal(ctx context.Context, cfg *config.Pedal, session contracts.Session, r *repl, log contracts.Logger) (func(), error) {
	bindings := pedal.DefaultBindings()
	if len(cfg.Bindings) > 0 {
		var err error
		if bindings, err = pedal.ParseBindings(cfg.Bindings); err != nil {
			return nil, err
		}
	}
	client, err := sdkpedal.NewPedalClient(contracts.WithPedalLogger(log))
	if err != nil {
		return nil, err
	}
	if err := client.SelectDevice(cfg.Device); err != nil {
		client.Stop()
		return nil, err
	}

	events := make(chan contracts.PedalEvent, 64)
	client.StartCapture(events)
	go pedal.Dispatch(ctx, events, bindings, session, log, func(_ contracts.Action, err error) {
		r.after(err)
	})
	return func() { client.Stop() }, nil
}

func printPedals(log contracts.Logger) int {
	client, err := sdkpedal.NewPedalClient(contracts.WithPedalLogger(log))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Stop()
	devices, err := client.ListDevices()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for i, d := range devices {
		fmt.Printf("%d: %s (%s)\n", i, d.Name, d.Manufacturer)
	}
	return 0
}
