package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbalug7/go-nxtiot/pkg/common"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
	"github.com/mbalug7/go-nxtiot/pkg/uart"
	"github.com/mbalug7/go-nxtiot/pkg/wisol"
)

func main() {
	cfg := common.DefaultConfig()
	flag.StringVar(&cfg.TTY, "tty", cfg.TTY, "serial port wired to the Wisol module")
	flag.StringVar(&cfg.GPIOChip, "chip", cfg.GPIOChip, "GPIO chip name")
	flag.Var(common.LineOffsetFlag(&cfg.EnableLine), "enable", "Wisol enable line offset")
	flag.Var(common.LineOffsetFlag(&cfg.LEDLine), "led", "LED line offset")
	verbose := flag.Bool("v", false, "log every module exchange")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// GPIO lines are requested here, the tty is opened by module.Init
	hw, err := common.NewHWHandler(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Error("failed to close hardware", slog.Any("error", err))
		}
	}()

	serial := uart.New(hw.Serial, logger)
	module := wisol.NewModule(hw.Port, cfg.EnableLine, serial, logger)
	if err := module.Init(); err != nil {
		log.Fatal(err)
	}
	if err := hw.Port.InitPin(cfg.LEDLine, hal.PinOutput); err != nil {
		log.Fatal(err)
	}

	buf := make([]byte, 32)
	n, err := module.GetID(buf)
	if err != nil {
		logger.Error("failed to read module id", slog.Any("error", err))
	} else {
		logger.Info("module id", slog.String("id", string(buf[:n])))
	}

	n, err = module.GetPAC(buf)
	if err != nil {
		logger.Error("failed to read module PAC", slog.Any("error", err))
	} else {
		logger.Info("module PAC", slog.String("pac", string(buf[:n])))
	}

	// blink until interrupted
	signalInterruptChan := make(chan os.Signal, 1)
	signal.Notify(signalInterruptChan, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-signalInterruptChan:
			return
		case <-ticker.C:
			if err := hw.Port.TogglePin(cfg.LEDLine); err != nil {
				logger.Error("failed to toggle LED", slog.Any("error", err))
			}
		}
	}
}
