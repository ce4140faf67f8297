package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	viper      *viper.Viper
	prompter   prompter
	configFile string
	cfg        config
}

func newApp() *app {
	return &app{
		viper:    viper.New(),
		prompter: surveyPrompter{},
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "guesser",
		Short: "Guess admin views from the records of a data source",
		Long: `guesser samples the records of a resource, infers a type for every field
and prints the Show, Edit or List view it would build for them. The serve
command mounts the guessed views for every resource over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig(a.viper, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Configuration file path (yaml, json or toml)")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("environment", "development", "Environment; production silences snippet logging")
	flags.String("import-package", "", "Package named in the snippet import line (default react-admin)")
	flags.String("resources", "", "Resource configuration file or URL")
	flags.String("openapi", "", "OpenAPI document file or URL describing the resources")
	flags.String("data", "", "JSON fixtures file or URL: {\"books\": [...]}")
	flags.String("api", "", "Base URL of a REST API serving /{resource} and /{resource}/{id}")
	flags.String("api-envelope", "", "Dot path of the records inside API responses")
	flags.String("database", "", "SQLite database file or DSN")

	setDefaults(a.viper)
	_ = a.viper.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.viper.BindPFlag(keyLogFormat, flags.Lookup("log-format"))
	_ = a.viper.BindPFlag(keyEnvironment, flags.Lookup("environment"))
	_ = a.viper.BindPFlag(keyImportPackage, flags.Lookup("import-package"))
	_ = a.viper.BindPFlag(keyResources, flags.Lookup("resources"))
	_ = a.viper.BindPFlag(keyOpenAPI, flags.Lookup("openapi"))
	_ = a.viper.BindPFlag(keyData, flags.Lookup("data"))
	_ = a.viper.BindPFlag(keyAPI, flags.Lookup("api"))
	_ = a.viper.BindPFlag(keyAPIEnvelope, flags.Lookup("api-envelope"))
	_ = a.viper.BindPFlag(keyDatabase, flags.Lookup("database"))

	root.AddCommand(a.guessCommand(), a.serveCommand())
	return root
}
