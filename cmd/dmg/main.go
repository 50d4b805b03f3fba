package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-dmg/dmg"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/headless"
	"github.com/valerio/go-dmg/dmg/backend/terminal"
	"github.com/valerio/go-dmg/dmg/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A cycle accurate Game Boy (DMG) emulator"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to the 256 byte DMG boot ROM",
			Value: dmg.DefaultBootROMPath,
		},
		cli.BoolFlag{
			Name:  "skip-boot",
			Usage: "Start at 0x0100 with the post-boot state instead of running the boot ROM",
		},
		cli.BoolFlag{
			Name:   "trace",
			Usage:  "Log every executed instruction",
			EnvVar: "DEBUG",
		},
		cli.StringFlag{
			Name:   "until",
			Usage:  "Inject NOP; STOP 00 at this hex address to end the run there",
			EnvVar: "UNTIL",
		},
		cli.StringFlag{
			Name:   "dump",
			Usage:  "Dump the 256 byte memory page holding this hex address on exit",
			EnvVar: "MEMORY",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a terminal interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	if c.NArg() == 0 {
		_ = cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().Get(0)

	config := dmg.Config{
		BootROMPath: c.String("boot-rom"),
		SkipBootROM: c.Bool("skip-boot"),
		Trace:       c.Bool("trace"),
	}

	var err error
	if config.StopAt, err = parseAddress(c.String("until")); err != nil {
		return fmt.Errorf("invalid --until: %w", err)
	}
	if config.DumpAt, err = parseAddress(c.String("dump")); err != nil {
		return fmt.Errorf("invalid --dump: %w", err)
	}

	var (
		b       backend.Backend
		limiter timing.Limiter
	)
	if c.Bool("headless") {
		level := slog.LevelInfo
		if config.Trace {
			level = slog.LevelDebug
		}
		config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return err
		}
		b = headless.New(c.Int("frames"), snapshots, config.Logger)
		limiter = timing.NewNoOpLimiter()
	} else {
		tb := terminal.New()
		if config.Trace {
			tb.SetLogLevel(slog.LevelDebug)
		}
		config.Logger = tb.Logger()
		b = tb
		limiter = timing.NewSleepLimiter()
	}
	slog.SetDefault(config.Logger)

	system, err := dmg.New(romPath, config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Init(backend.Config{Title: system.MMU().Cartridge().Title()}); err != nil {
		return err
	}
	runErr := backend.Run(ctx, system, b, limiter)
	if err := b.Cleanup(); err != nil {
		return err
	}

	// the terminal is restored by now, so the dump is readable
	if err := system.Dump(os.Stdout); err != nil {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// parseAddress reads a 16 bit hex address, with or without a 0x prefix. An
// empty string means no address.
func parseAddress(s string) (*uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")

	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return nil, err
	}
	address := uint16(v)
	return &address, nil
}
