// Command clockd runs the alarm clock service: it keeps time, fires alarms
// and scheduled sounds, and persists state across restarts. Display, input
// and audio hardware attach through their own processes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dotmatrix/clockd/config"
	"github.com/dotmatrix/clockd/sched"
	"github.com/dotmatrix/clockd/service"
	"github.com/dotmatrix/clockd/store"
)

var dataDirFlag = flag.String("data", "/var/lib/clockd", "data directory for config, state and logs")

func main() {
	flag.Parse()
	if err := run(*dataDirFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dataDir string) error {
	cfg, err := config.Load(filepath.Join(dataDir, config.CfgFile))
	if err != nil {
		return err
	}
	initLogging(dataDir, cfg.DebugLogging)

	st, err := store.Open(filepath.Join(dataDir, "clockd.db"))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	hw := newFileClock(filepath.Join(dataDir, "hwclock"))
	svc, err := service.New(cfg, clockwork.NewRealClock(), st, hw, idleSync{}, logPlayer{})
	if err != nil {
		return err
	}

	go func() {
		for now := range svc.Ticks() {
			log.Debug().Msgf("tick %s", now)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("clockd starting, timezone %s", cfg.Timezone)
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("clockd stopped")
	return nil
}

func initLogging(dataDir string, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "clockd.log"),
		MaxSize:    1,
		MaxBackups: 2,
	}}
	if debug {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.Output(io.MultiWriter(writers...)).With().Timestamp().Logger()
}

// idleSync stands in for the network time manager, which runs out of
// process. Without it the service falls back to the hardware clock on the
// usual no-sync schedule.
type idleSync struct{}

func (idleSync) Status() sched.SyncStatus { return sched.SyncIdle }

// logPlayer stands in for the audio pipeline.
type logPlayer struct{}

func (logPlayer) Play(sound string, loop bool) error {
	log.Info().Msgf("play sound=%s loop=%v", sound, loop)
	return nil
}

func (logPlayer) Stop() error {
	log.Info().Msg("stop playback")
	return nil
}
