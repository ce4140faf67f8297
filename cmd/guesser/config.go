package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/resource"
	"github.com/goliatone/go-guesser/pkg/source"
)

const envPrefix = "GUESSER"

// Config keys shared by flags, config files and GUESSER_* variables.
const (
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyEnvironment   = "environment"
	keyImportPackage = "import_package"
	keyResources     = "resources"
	keyOpenAPI       = "openapi"
	keyData          = "data"
	keyAPI           = "api"
	keyAPIEnvelope   = "api_envelope"
	keyDatabase      = "database"
	keyAddr          = "addr"
	keyPerPage       = "per_page"
)

type config struct {
	LogLevel      string
	LogFormat     string
	Environment   string
	ImportPackage string
	Resources     string
	OpenAPI       string
	Data          string
	API           string
	APIEnvelope   string
	Database      string
	Addr          string
	PerPage       int
}

func (c config) production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyEnvironment, "development")
	v.SetDefault(keyAddr, ":8080")
	v.SetDefault(keyPerPage, 25)
}

// readConfig reads the optional config file and binds the environment.
func readConfig(v *viper.Viper, file string) (config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return config{
		LogLevel:      v.GetString(keyLogLevel),
		LogFormat:     v.GetString(keyLogFormat),
		Environment:   v.GetString(keyEnvironment),
		ImportPackage: v.GetString(keyImportPackage),
		Resources:     v.GetString(keyResources),
		OpenAPI:       v.GetString(keyOpenAPI),
		Data:          v.GetString(keyData),
		API:           v.GetString(keyAPI),
		APIEnvelope:   v.GetString(keyAPIEnvelope),
		Database:      v.GetString(keyDatabase),
		Addr:          v.GetString(keyAddr),
		PerPage:       v.GetInt(keyPerPage),
	}, nil
}

func newLogger(cfg config, out io.Writer) (*logrus.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: out,
	})
}

func newSourceLoader() *source.Loader {
	return source.NewLoader(source.WithHTTPFallback(30 * time.Second))
}

// loadResources merges the resource configuration file and the OpenAPI
// document. Either may be absent.
func loadResources(ctx context.Context, loader *source.Loader, cfg config) (*resource.Registry, error) {
	registry, err := resource.NewRegistry()
	if err != nil {
		return nil, err
	}

	if cfg.OpenAPI != "" {
		data, err := loadLocation(ctx, loader, cfg.OpenAPI)
		if err != nil {
			return nil, fmt.Errorf("openapi: %w", err)
		}
		fromDoc, err := resource.FromOpenAPI(ctx, data)
		if err != nil {
			return nil, err
		}
		if err := registry.Merge(fromDoc); err != nil {
			return nil, err
		}
	}

	if cfg.Resources != "" {
		data, err := loadLocation(ctx, loader, cfg.Resources)
		if err != nil {
			return nil, fmt.Errorf("resources: %w", err)
		}
		fromFile, err := resource.Parse(data)
		if err != nil {
			return nil, err
		}
		if err := registry.Merge(fromFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func loadLocation(ctx context.Context, loader *source.Loader, location string) ([]byte, error) {
	src, err := source.Parse(location)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, src)
}

// openProvider builds the data provider selected by exactly one of data, api
// and database. The returned close function releases the provider.
func openProvider(ctx context.Context, loader *source.Loader, cfg config, registry *resource.Registry, logger logrus.FieldLogger) (dataprovider.Provider, func() error, error) {
	noop := func() error { return nil }

	selected := 0
	for _, location := range []string{cfg.Data, cfg.API, cfg.Database} {
		if strings.TrimSpace(location) != "" {
			selected++
		}
	}
	switch {
	case selected == 0:
		return nil, noop, errors.New("a data source is required: set one of --data, --api or --database")
	case selected > 1:
		return nil, noop, errors.New("only one of --data, --api or --database may be set")
	}

	switch {
	case cfg.Data != "":
		data, err := loadLocation(ctx, loader, cfg.Data)
		if err != nil {
			return nil, noop, fmt.Errorf("data: %w", err)
		}
		provider, err := dataprovider.LoadMemory(data, dataprovider.WithMemoryIdentifiers(registry))
		if err != nil {
			return nil, noop, err
		}
		return provider, noop, nil
	case cfg.API != "":
		opts := []dataprovider.HTTPOption{dataprovider.WithHTTPLogger(logger)}
		if cfg.APIEnvelope != "" {
			opts = append(opts, dataprovider.WithEnvelope(cfg.APIEnvelope))
		}
		provider, err := dataprovider.NewHTTP(cfg.API, opts...)
		if err != nil {
			return nil, noop, err
		}
		return provider, noop, nil
	default:
		db, err := sql.Open("sqlite", cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("database: %w", err)
		}
		provider := dataprovider.NewSQL(db,
			dataprovider.WithSQLIdentifiers(registry),
			dataprovider.WithSQLLogger(logger),
		)
		return provider, db.Close, nil
	}
}

// resourceNames lists the resources a prompt can offer.
func resourceNames(ctx context.Context, provider dataprovider.Provider, registry *resource.Registry) []string {
	if lister, ok := provider.(dataprovider.ResourceLister); ok {
		if names, err := lister.Resources(ctx); err == nil && len(names) > 0 {
			return names
		}
	}
	return registry.Names()
}
