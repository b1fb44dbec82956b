package main

import (
	"otms/config"
	"otms/di"
	"otms/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app := di.InitializeApp()

	app.Queue.Start()
	defer app.Queue.Stop()

	app.HTTP.Serve()
}
