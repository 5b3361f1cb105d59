package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lguibr/tetris/audio"
	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/client"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/server"
	"github.com/lguibr/tetris/terminal"
	"github.com/lguibr/tetris/utils"
)

func main() {
	mode := flag.String("mode", "serve", "serve, play or client")
	addr := flag.String("addr", "", "listen address for serve, server address for client")
	configPath := flag.String("config", "", "JSON config file")
	seed := flag.Uint64("seed", 0, "piece seed, 0 uses the clock")
	sound := flag.Bool("sound", true, "play sound effects in play mode")
	logLevel := flag.String("log-level", "", "DEBUG, INFO, WARN or ERROR")
	flag.Parse()

	cfg := utils.DefaultConfig()
	if *configPath != "" {
		loaded, err := utils.LoadConfigFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.PieceSeed = *seed
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.SoundEnabled = cfg.SoundEnabled && *sound
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(logging.LevelFromString(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = serve(ctx, cfg)
	case "play":
		err = play(ctx, cfg)
	case "client":
		err = client.Run(ctx, clientAddr(cfg.ServerAddr))
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *mode, err)
		os.Exit(1)
	}
}

// clientAddr turns a listen address like ":3001" into a dialable one.
func clientAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func serve(ctx context.Context, cfg utils.Config) error {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(5 * time.Second)

	managerPID := engine.Spawn(bollywood.NewProps(game.NewSessionManagerProducer(engine, cfg)))
	if managerPID == nil {
		return fmt.Errorf("failed to spawn session manager")
	}
	logging.Infof("SessionManager actor spawned with PID: %s", managerPID)

	return server.New(engine, managerPID, cfg).ListenAndServe(ctx)
}

func play(ctx context.Context, cfg utils.Config) error {
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.SetOutput(logOut)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	engine := bollywood.NewEngine()
	defer engine.Shutdown(time.Second)
	gamePID := engine.Spawn(bollywood.NewProps(game.NewGameActorProducer(engine, cfg, nil)))
	if gamePID == nil {
		return fmt.Errorf("failed to spawn game")
	}

	sound := audio.NewSoundManager()
	if cfg.SoundEnabled {
		if err := sound.Initialize(); err != nil {
			logging.Warnf("Audio disabled: %v", err)
		}
	}
	defer sound.Cleanup()

	return terminal.New(screen, engine, gamePID, sound).Run(ctx)
}
