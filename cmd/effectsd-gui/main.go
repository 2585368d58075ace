package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"github.com/winramp/effectsd/internal/config"
	"github.com/winramp/effectsd/internal/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("effectsd-gui %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error, falling back to defaults: %v\n", err)
	}

	logConfig := logger.DefaultConfig()
	if *logLevel != "" {
		logConfig.Level = *logLevel
	}
	logger.Initialize(logConfig)

	logger.Info("effectsd-gui starting",
		logger.String("version", Version),
		logger.String("build_time", BuildTime),
	)

	app := NewApp(cfg)

	err = wails.Run(&options.App{
		Title:     "effectsd",
		Width:     900,
		Height:    600,
		MinWidth:  600,
		MinHeight: 400,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			Theme:                windows.Dark,
		},
	})

	if err != nil {
		logger.Fatal("failed to run application", logger.Error(err))
	}
}
