package main

import (
	"os"

	"custody/settlement/internal/app"
	"custody/settlement/internal/config"
	"custody/settlement/internal/infra/nats"
	"custody/settlement/internal/infra/postgres"
	"custody/settlement/internal/logger"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if path := os.Getenv("ENVPATH"); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic("Can't load .env file: " + err.Error())
		}
	}

	config := config.ReadConfig()

	unixLogger := logger.Init(config)

	var db *gorm.DB
	if config.Storage.Driver == "postgres" {
		db = postgres.Init(config)
	}

	natsinfra := nats.Init(config, unixLogger)

	app := &app.App{
		Config:    config,
		Db:        db,
		NatsInfra: natsinfra,
		Log:       unixLogger,
	}

	app.Start()
}
