package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kpauljoseph/sonaveeb-anki/internal/anki"
	"github.com/kpauljoseph/sonaveeb-anki/internal/cards"
	"github.com/kpauljoseph/sonaveeb-anki/internal/config"
	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
	"github.com/kpauljoseph/sonaveeb-anki/internal/resolver"
	"github.com/kpauljoseph/sonaveeb-anki/internal/sonaveeb"
	"github.com/kpauljoseph/sonaveeb-anki/internal/translate"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"google.golang.org/api/option"
)

// app holds the components shared by the subcommands. Anki-backed parts are
// only built by commands that need them.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	dict     *sonaveeb.Client
	resolver *resolver.Resolver

	anki      *anki.Client
	notetypes *notetype.Manager
	cards     *cards.Service

	closers []func() error
}

func newApp(opts *rootOptions) (*app, error) {
	log := logger.New(logger.WithPrefix("[sonaveeb-anki] "))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	log.SetVerbose(opts.verbose || cfg.Log.Verbose)
	if opts.debug {
		log.SetLevel(logger.LevelTrace)
	}

	profile, err := sonaveeb.ParseProfile(cfg.Dictionary.Profile)
	if err != nil {
		return nil, err
	}
	dict, err := sonaveeb.NewClient(
		sonaveeb.WithBaseURL(cfg.Dictionary.BaseURL),
		sonaveeb.WithProfile(profile),
		sonaveeb.WithTimeout(cfg.Dictionary.Timeout),
		sonaveeb.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:  cfg,
		log:  log,
		dict: dict,
		resolver: resolver.New(dict,
			resolver.WithLanguage(cfg.Dictionary.Language),
			resolver.WithLogger(log),
		),
	}, nil
}

// connectAnki opens the marker registry and checks that AnkiConnect answers.
func (a *app) connectAnki(ctx context.Context) error {
	markers, err := anki.OpenMarkerRegistry(a.cfg.Anki.RegistryPath)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, markers.Close)

	a.anki = anki.NewClient(markers, a.log, anki.WithURL(a.cfg.Anki.ConnectURL))
	a.log.Debug("Checking Anki connection...")
	if err := a.anki.CheckConnection(ctx); err != nil {
		return err
	}
	a.log.Info("Successfully connected to Anki")

	catalogue, err := notetype.DefaultCatalogue()
	if err != nil {
		return err
	}
	a.notetypes = notetype.NewManager(a.anki, catalogue, a.log)

	cross, err := a.crossTranslator(ctx)
	if err != nil {
		return err
	}
	a.cards = cards.NewService(a.anki, cross, a.log)
	return nil
}

func (a *app) crossTranslator(ctx context.Context) (translate.Func, error) {
	var tr translate.Translator
	switch a.cfg.Translation.Backend {
	case "google":
		var opts []option.ClientOption
		if a.cfg.Translation.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(a.cfg.Translation.CredentialsFile))
		}
		g, err := translate.NewGoogleTranslator(ctx, opts...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		tr = g
	case "web":
		tr = translate.NewWebTranslator(a.cfg.Translation.WebURL, a.cfg.Dictionary.Timeout)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", a.cfg.Translation.Backend)
	}
	return translate.Cross(tr, a.cfg.Translation.Threshold), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
