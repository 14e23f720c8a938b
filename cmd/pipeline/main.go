package main

import (
	"context"
	"time"

	"github.com/airenas/dubber/internal/pkg/consul"
	"github.com/airenas/dubber/internal/pkg/filer"
	"github.com/airenas/dubber/internal/pkg/pipeline"
	"github.com/airenas/dubber/internal/pkg/postgres"
	"github.com/airenas/dubber/internal/pkg/recognizer"
	"github.com/airenas/dubber/internal/pkg/synthesizer"
	"github.com/airenas/dubber/internal/pkg/translator"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/go-app/pkg/goapp"
	capi "github.com/hashicorp/consul/api"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &pipeline.ServiceData{}
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
	if err := utils.WaitForReady(ctx, db); err != nil {
		goapp.Log.Fatal().Err(err).Msg("db not ready")
	}

	data.DB = db

	data.Saver, err = filer.NewFiler(ctx, filer.Options{Bucket: cfg.GetString("filer.bucket"),
		URL: cfg.GetString("filer.url"), User: cfg.GetString("filer.user"), Key: cfg.GetString("filer.key"),
		PublicURL: cfg.GetString("filer.publicUrl"), Secure: cfg.GetBool("filer.https")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file saver")
	}

	data.Loader = pipeline.NewAudioLoader()

	data.Recognizer, err = recognizer.NewClient(cfg.GetString("openai.key"),
		cfg.GetString("openai.url"), cfg.GetString("openai.sttModel"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init recognizer")
	}

	data.Translator, err = translator.NewClient(cfg.GetString("openai.key"),
		cfg.GetString("openai.url"), cfg.GetString("openai.model"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init translator")
	}

	ctxSrv, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var consulDoneCh chan struct{}
	if cfg.GetString("consul.url") != "" {
		cCfg := capi.DefaultConfig()
		cCfg.Address = cfg.GetString("consul.url")
		provider, err := consul.NewProvider(cCfg, cfg.GetString("consul.service"), cfg.GetString("tts.key"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init consul provider")
		}
		consulDoneCh, err = provider.StartCheckLoop(ctxSrv, time.Second*15)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't start consul check loop")
		}
		data.Synthesizer = provider
	} else {
		data.Synthesizer, err = synthesizer.NewClient(cfg.GetString("tts.url"),
			cfg.GetString("tts.key"), cfg.GetString("tts.model"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init synthesizer")
		}
	}

	data.MsgSender, err = postgres.NewSender(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}

	err = pipeline.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
	cancelFunc()
	if consulDoneCh != nil {
		select {
		case <-consulDoneCh:
		case <-time.After(time.Second * 15):
			goapp.Log.Warn().Msg("Timeout gracefull shutdown")
		}
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

     ____  _            ___
    / __ \(_)___  ___  / (_)___  ___
   / /_/ / / __ \/ _ \/ / / __ \/ _ \
  / ____/ / /_/ /  __/ / / / / /  __/
 /_/   /_/ .___/\___/_/_/_/ /_/\___/  v: %s
        /_/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/dubber"))
}
