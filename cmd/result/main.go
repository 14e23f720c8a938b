package main

import (
	"context"

	"github.com/airenas/dubber/internal/pkg/filer"
	"github.com/airenas/dubber/internal/pkg/postgres"
	"github.com/airenas/dubber/internal/pkg/result"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &result.Data{}
	data.Port = cfg.GetInt("port")
	var err error

	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}

	data.DB = db

	data.Reader, err = filer.NewFiler(ctx, filer.Options{Bucket: cfg.GetString("filer.bucket"),
		URL: cfg.GetString("filer.url"), User: cfg.GetString("filer.user"), Key: cfg.GetString("filer.key"),
		PublicURL: cfg.GetString("filer.publicUrl"), Secure: cfg.GetBool("filer.https")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file reader")
	}

	err = result.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
       __      __    __
  ____/ /_  __/ /_  / /_  ___  ____
 / __  / / / / __ \/ __ \/ _ \/ __/
/ /_/ / /_/ / /_/ / /_/ /  __/ /
\__,_/\__,_/_.___/_.___/\___/_/

                           ____
   ________  _______  __  / / /_
  / ___/ _ \/ ___/ / / / / / __/
 / /  /  __(__  ) /_/ / / / /_
/_/   \___/____/\__,_/_/_/\__/   v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/dubber"))
}
