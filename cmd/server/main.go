package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"skinmuse/internal/app"
)

// @title           SkinMuse API
// @version         1.0
// @description     Бэкенд SkinMuse: аккаунты, посты, комментарии, оценки.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
