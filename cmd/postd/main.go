package main

import (
	"context"
	"flag"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"time"

	"github.com/google/gops/agent"
	"github.com/nicolagi/postd/server"
	"github.com/nicolagi/postd/storage"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	defaultConfigFile := os.ExpandEnv("$HOME/lib/postd/postd.config")
	configFile := flag.String("config", defaultConfigFile, "location of configuration file")
	flag.Parse()

	opts, err := loadConfig(*configFile)
	if os.IsNotExist(err) {
		log.WithField("path", *configFile).Warn("No configuration file, using defaults")
		opts, err = new(config), nil
	}
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}

	opts.applyDefaultsForMissingProperties()

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	cleanup := redirectLogging(opts)
	defer cleanup()

	if err := agent.Listen(agent.Options{}); err != nil {
		log.WithField("err", err).Warn("Could not start gops agent")
	} else {
		defer agent.Close()
	}

	store := storage.NewSeededStore()
	log.WithField("posts", store.Len()).Info("Seeded in-memory store")

	srv := server.New(
		server.WithAddress(opts.Address),
		server.WithStore(store),
		server.WithRateLimit(rate.Limit(opts.RateLimit), opts.RateBurst),
	)
	addr, err := srv.Listen()
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"addr": opts.Address,
		}).Fatal("Could not listen")
	}
	log.WithFields(log.Fields{"addr": addr}).Info("Listening")

	// Serve only returns once Shutdown has drained in-flight requests, so an
	// interrupt is what ends the process.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		sig := <-c
		log.WithField("signal", sig).Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithFields(log.Fields{"err": err}).Warn("Could not shut down the server cleanly")
		}
	}()

	if err := srv.Serve(); err != nil {
		log.Error(err)
	}
}

func redirectLogging(c *config) (cleanup func()) {
	golog.SetOutput(log.StandardLogger().Writer())
	if c.LogPath == "" {
		return func() {}
	}
	pathname := os.ExpandEnv(c.LogPath)
	logger := log.WithField("pathname", pathname)
	f, err := os.OpenFile(pathname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		logger.WithField("err", err).Fatal("Could not open log file")
	}
	logger.Info("Lines after this one will be logged to a file")
	log.SetOutput(f)
	return func() {
		if err := f.Close(); err != nil {
			// Can't use the logger here!
			_, _ = fmt.Fprintf(os.Stderr, "Could not close log file cleanly %q: %v", pathname, err)
		}
	}
}
