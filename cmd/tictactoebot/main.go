package main

import (
	"log"

	corecmd "github.com/m3rciful/tictactoe-bot/core/cmd"
	"github.com/m3rciful/tictactoe-bot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options[*app.Config]{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap: func(cfg *app.Config) (corecmd.TelegramApp, error) {
			return app.New(cfg, app.Options{})
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
