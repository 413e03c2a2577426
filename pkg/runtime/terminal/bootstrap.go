package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/de-tools/riskread/pkg/runtime/terminal/commands"
	"github.com/de-tools/riskread/pkg/services/analysis"
	"github.com/de-tools/riskread/pkg/services/config"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/services/report"
	"github.com/de-tools/riskread/pkg/services/upload"
	"github.com/de-tools/riskread/pkg/store/blob"
	"github.com/de-tools/riskread/pkg/store/client"
	"github.com/de-tools/riskread/pkg/store/sqlite"
	"github.com/de-tools/riskread/pkg/store/sqlite/cache"
)

// Bootstrap builds the command environment from settings. The returned
// closers release what was opened, even when an error is returned.
func Bootstrap(ctx context.Context, v *viper.Viper, explicitURL bool, errOut io.Writer) (*commands.Env, []func() error, error) {
	logger := zerolog.Ctx(ctx)
	var closers []func() error

	settings, err := config.Load(v)
	if err != nil {
		return nil, closers, err
	}

	registry, err := config.NewRegistry(settings.ProfilePath)
	if err != nil {
		return nil, closers, err
	}
	if err := config.Resolve(ctx, settings, registry, explicitURL); err != nil {
		return nil, closers, err
	}

	api, err := client.NewAnalysisClient(client.Settings{
		Host:    settings.APIURL,
		Token:   settings.Token,
		Timeout: settings.RequestTimeout,
	})
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create api client: %w", err)
	}

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: settings.Cache.Path})
	if err != nil {
		return nil, closers, fmt.Errorf("failed to open cache database: %w", err)
	}
	closers = append(closers, db.Close)

	store, err := cache.NewStore(db, cache.Options{
		Capacity: settings.Cache.Capacity,
		TTL:      settings.Cache.TTL,
		Now:      time.Now,
	})
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create cache store: %w", err)
	}

	uploader, err := blob.New(ctx, blob.Settings{
		Kind:        blob.Kind(settings.Upload.Backend),
		Bucket:      settings.Upload.Bucket,
		Prefix:      settings.Upload.Prefix,
		Profile:     settings.Upload.Profile,
		Region:      settings.Upload.Region,
		Endpoint:    settings.Upload.Endpoint,
		AccessKey:   settings.Upload.AccessKey,
		SecretKey:   settings.Upload.SecretKey,
		UseSSL:      settings.Upload.UseSSL,
		AccountName: settings.Upload.AccountName,
		AccountKey:  settings.Upload.AccountKey,
	})
	if err != nil {
		if !errors.Is(err, blob.ErrNotConfigured) {
			return nil, closers, fmt.Errorf("failed to configure upload backend: %w", err)
		}
		logger.Debug().Msg("no upload backend configured, uploads need --file-url")
		uploader = nil
	}

	notifier := notify.NewTerminal(errOut)
	logger.Debug().Str("api_url", settings.APIURL).Str("cache", settings.Cache.Path).Msg("client configured")

	return &commands.Env{
		Settings: settings,
		API:      api,
		Cache:    store,
		Analyses: analysis.NewService(api, store, notifier),
		Uploads:  upload.NewService(api, uploader, notifier, settings.Upload.Prefix),
		Reports:  report.NewExporter(report.NewGenerator(), notifier),
		Notifier: notifier,
	}, closers, nil
}
