// Command effectsd runs the realtime audio effects pipeline headless,
// for environments without a GUI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/winramp/effectsd/internal/config"
	"github.com/winramp/effectsd/internal/diag"
	"github.com/winramp/effectsd/internal/hostaudio"
	"github.com/winramp/effectsd/internal/logger"
	"github.com/winramp/effectsd/internal/session"
)

func main() {
	var (
		configPath = pflag.String("config", "", "path to configuration file")
		inputSub   = pflag.String("input", "", "input device substring override")
		outputSub  = pflag.String("output", "", "output device substring override")
		latencyMS  = pflag.Float64("latency-ms", 0, "session latency in milliseconds (0 = use config value)")
		logLevel   = pflag.String("log-level", "", "log level (debug, info, warn, error)")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error, falling back to defaults: %v\n", err)
	}

	logCfg := logger.DefaultConfig()
	if *logLevel != "" {
		logCfg.Level = *logLevel
	}
	logger.Initialize(logCfg)

	inputSubstring := cfg.InputSubstring()
	if *inputSub != "" {
		inputSubstring = *inputSub
	}
	outputSubstring := cfg.OutputSubstring()
	if *outputSub != "" {
		outputSubstring = *outputSub
	}
	latency := cfg.LatencyMS
	if *latencyMS > 0 {
		latency = *latencyMS
	}

	specs, err := cfg.EffectSpecs()
	if err != nil {
		logger.Warn("falling back to empty effect chain", logger.Error(err))
		specs = nil
	}

	host, err := hostaudio.NewPortAudioHost()
	if err != nil {
		logger.Fatal("failed to initialize audio host", logger.Error(err))
	}
	defer host.Close()

	counters := &diag.Counters{}
	ctx := context.Background()

	sess, err := session.New(ctx, host, session.Config{
		InputSubstring:  inputSubstring,
		OutputSubstring: outputSubstring,
		LatencyMS:       latency,
		Effects:         specs,
	}, logger.Get().Zerolog(), counters)
	if err != nil {
		logger.Fatal("failed to start audio session", logger.Error(err))
	}

	logger.Info("effectsd running",
		logger.String("input", sess.InputName()),
		logger.String("output", sess.OutputName()),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down",
		logger.Int64("underruns", int64(counters.Underruns())),
		logger.Int64("overruns", int64(counters.Overruns())),
	)

	if err := sess.Close(); err != nil {
		logger.ErrorLog("error closing session", logger.Error(err))
		os.Exit(1)
	}
	os.Exit(0)
}
