package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"spotifylyrics-go/config"
	"spotifylyrics-go/logcolors"
	"syscall"

	log "github.com/sirupsen/logrus"
)

var conf = config.Get()

func setupLogging(c config.Config) {
	log.SetOutput(os.Stderr)
	if c.Logging.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		log.Warnf("%s Unknown log level %q, using info", logcolors.LogConfig, c.Logging.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	setupLogging(conf)

	a, err := newApp(conf)
	if err != nil {
		log.Fatalf("%s %v", logcolors.LogConfig, err)
	}
	defer a.shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("%s Source: %s, sync lyrics: %v, cache: %s", logcolors.LogConfig, a.source.Name, conf.Lyrics.SyncLyrics, conf.Cache.Backend)
	if err := a.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("%s %v", logcolors.LogWatcher, err)
	}
}
