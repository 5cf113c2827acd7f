package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saja-boys/jinwoo-server/config"
	"github.com/saja-boys/jinwoo-server/logger"
	"github.com/saja-boys/jinwoo-server/mission"
	"github.com/saja-boys/jinwoo-server/resilience"
	"github.com/saja-boys/jinwoo-server/server"
	"github.com/saja-boys/jinwoo-server/session"
	"github.com/saja-boys/jinwoo-server/upstream"
	"github.com/saja-boys/jinwoo-server/websocket"
)

func main() {
	port := flag.Int("port", 0, "HTTP port (overrides PORT)")
	curriculumPath := flag.String("curriculum", "", "curriculum YAML path (overrides CURRICULUM_PATH)")
	flag.Parse()

	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *curriculumPath != "" {
		cfg.CurriculumPath = *curriculumPath
	}

	log := logger.GetLogger()
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetComponent("jinwoo-server")

	curriculum, err := config.LoadCurriculum(cfg.CurriculumPath)
	if err != nil {
		log.Fatal("Failed to load curriculum", err)
	}
	log.Infof("curriculum loaded: %d stages, persona %s (%s)",
		curriculum.Len(), curriculum.Persona.Name, curriculum.Persona.Group)

	ctx := context.Background()

	replier, err := upstream.NewReplierFromEnv(ctx, cfg, curriculum.Persona)
	switch {
	case err == upstream.ErrReplyDisabled:
		log.Warn("reply provider not configured; every turn uses the fallback bank")
	case err != nil:
		log.Fatal("Failed to build reply provider", err)
	default:
		breaker := resilience.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)
		breaker.SetOnStateChange(func(from, to resilience.State) {
			log.Warnf("reply breaker %s -> %s", from, to)
		})
		replier = upstream.NewGuardedReplier(replier, breaker)
		log.Infof("reply provider: %s", cfg.ReplyProvider)
	}

	bank := mission.NewFallbackBank(curriculum, nil)
	controller := session.NewController(curriculum, bank, replier)

	voice := upstream.NewVoiceClient(cfg.VoiceURL, cfg.VoiceAPIKey, cfg.DefaultVoice, cfg.VoiceTimeout)
	translator := upstream.NewTranslationClient(cfg.TranslateURL, cfg.TranslateTimeout)

	var logStream *websocket.LogServer
	if cfg.WSLogPort > 0 {
		logStream = websocket.NewLogServer(cfg.WSLogPort)
		if err := logStream.Start(); err != nil {
			log.Fatal("Failed to start log stream", err)
		}
		controller.SetLogSink(logStream)
	}

	srv := server.New(cfg, curriculum, controller, voice, translator)

	// Set up a channel to listen for termination signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed", err)
		}
	}()

	// Wait for termination signal
	sig := <-sigChan
	log.Infof("received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", err)
	}
	if logStream != nil {
		if err := logStream.Stop(); err != nil {
			log.Error("Log stream shutdown failed", err)
		}
	}
}
