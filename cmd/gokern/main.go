package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/desertwitch/gokern/internal/configuration"
	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/filesys"
	"github.com/desertwitch/gokern/internal/ksyscall"
	"github.com/desertwitch/gokern/internal/schema"
	"github.com/lmittmann/tint"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", "gokern.env", "boot configuration file")
	diskImage  = flag.String("disk", "", "disk image path (overrides the configuration)")
	sectors    = flag.Int("sectors", 0, "sector count for a fresh image (overrides the configuration)")
	formatDisk = flag.Bool("format", false, "format the disk image before use")
	debug      = flag.Bool("debug", false, "log kernel debug traces")
)

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func bootConfig() *configuration.BootConfig {
	defaults := configuration.BootConfig{
		DiskImage:     "gokern.img",
		DiskSectors:   disk.DefaultNumSectors,
		SchedQuantum:  100,
		SchedAgeEvery: 100,
	}

	config := &defaults

	if _, err := os.Stat(*configFile); err == nil {
		configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

		read, err := configHandler.ReadBootConfig(defaults, *configFile)
		if err != nil {
			slog.Warn("Failed to read boot configuration, using defaults.", "err", err)
		} else {
			config = read
		}
	}

	if *diskImage != "" {
		config.DiskImage = *diskImage
	}

	if *sectors > 0 {
		config.DiskSectors = *sectors
	}

	if *formatDisk {
		config.FormatOnBoot = true
	}

	return config
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	setupLogging(level)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: gokern [flags] <format|create|mkdir|rm|rrm|ls|rls|cat|put|print|checksum|sched> [args]")
		ExitCode = 2

		return
	}

	config := bootConfig()

	app := NewApp(config, os.Stdout)

	if args[0] == "sched" {
		if err := app.RunSched(); err != nil {
			slog.Error("Scheduler demonstration failed.", "err", err)
			ExitCode = 1
		}

		return
	}

	dev, err := openDisk(config, args[0] == "format")
	if err != nil {
		slog.Error("Failed to establish the disk.", "err", err)
		ExitCode = 1

		return
	}
	defer func() {
		if err := dev.Close(); err != nil {
			slog.Error("Failed to close the disk.", "err", err)
			ExitCode = 1
		}
	}()

	fsys, err := filesys.New(dev, args[0] == "format" || config.FormatOnBoot)
	if err != nil {
		slog.Error("Failed to establish the filesystem.", "err", err)
		ExitCode = 1

		return
	}

	app.fsys = fsys
	app.dev = dev
	app.kernel = ksyscall.New(fsys, nil)

	if err := app.Run(args); err != nil {
		slog.Error("Command failed.", "err", err)
		ExitCode = 1
	}
}

func openDisk(config *configuration.BootConfig, format bool) (*disk.Disk, error) {
	osProvider := &schema.OS{}

	if _, err := osProvider.Stat(config.DiskImage); err != nil || format {
		if !format && !config.FormatOnBoot {
			return nil, fmt.Errorf("no disk image at %q (run format first): %w", config.DiskImage, err)
		}

		return disk.Create(osProvider, config.DiskImage, config.DiskSectors)
	}

	return disk.New(osProvider, config.DiskImage)
}
