package main

import (
	"os"

	"github.com/avstrong/tourbooking/internal/app"
	"github.com/avstrong/tourbooking/internal/config"
	"github.com/avstrong/tourbooking/internal/logger"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		logger.NewWithLevel(os.Stderr, "info").LogErrorf("Failed to load config: %v", err.Error())
		os.Exit(1)
	}

	l := logger.NewWithLevel(os.Stdout, conf.LogLevel)

	var exitCode int

	if err := app.Run(l, conf); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
