package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/iwvelando/ingredient-optimizer/internal/config"
	"github.com/iwvelando/ingredient-optimizer/internal/form"
	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/internal/server"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/ingredients"
	"github.com/iwvelando/ingredient-optimizer/pkg/logging"
	"github.com/iwvelando/ingredient-optimizer/pkg/output"
	"github.com/iwvelando/ingredient-optimizer/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

// overridden during build with ldflags
var version = "dev"

// errInvalidInput is returned after per-field validation messages were printed.
var errInvalidInput = errors.New("invalid input")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "ingredient-optimizer",
		Usage:   "Find a cost-optimized ingredient mix for nutrient targets",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: constants.DefaultConfigFile,
				Usage: "path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level override (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded into the environment before configuration",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "optimizer service base URL override",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			optimizeCmd(),
			ingredientsCmd(),
		},
	}
}

func outputFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output-format",
		Usage: "type of output override: pretty, csv, json",
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server-config",
				Value: constants.DefaultServerConfigFile,
				Usage: "path to server configuration file",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address override (e.g. :8080)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			serverCfg, err := server.LoadConfig(cmd.String("server-config"))
			if err != nil {
				return err
			}
			if address := cmd.String("address"); address != "" {
				serverCfg.Address = address
			}

			conf, err := loadConfiguration(cmd)
			if err != nil {
				return err
			}
			mergeLogging(&conf.Logging, serverCfg.Logging)

			logger, err := logging.InitializeLogger(conf.Logging, cmd.String("log-level"))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			logWarnings(logger, conf)

			client, err := newClient(conf, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("server config",
				zap.String("op", "main.serve"),
				zap.String("version", version),
				zap.String("address", serverCfg.Address),
				zap.String("optimizer", client.Endpoint()),
				zap.String("maxBodySize", humanize.IBytes(uint64(serverCfg.BodySizeBytes()))),
				zap.Float64("rateLimit", serverCfg.RateLimit),
				zap.Int("rateLimitBurst", serverCfg.RateLimitBurst),
				zap.Int("maxSessions", serverCfg.MaxSessions),
			)

			return server.NewServer(logger, client, serverCfg, version).Run(ctx)
		},
	}
}

func optimizeCmd() *cli.Command {
	flags := make([]cli.Flag, 0, len(form.Fields)+1)
	for _, field := range form.Fields {
		flags = append(flags, &cli.StringFlag{
			Name:  flagName(field.Key),
			Usage: field.Label(),
		})
	}
	flags = append(flags, outputFormatFlag())

	return &cli.Command{
		Name:  "optimize",
		Usage: "Validate nutrient targets and request an optimized ingredient mix",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conf, err := loadConfiguration(cmd)
			if err != nil {
				return err
			}
			outputFormat, err := resolveOutputFormat(cmd, conf)
			if err != nil {
				return err
			}

			logger, err := logging.InitializeLogger(conf.Logging, cmd.String("log-level"))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			values := form.Values{}
			for _, field := range form.Fields {
				values[field.Key] = cmd.String(flagName(field.Key))
			}

			targets, errs := form.Parse(values)
			if len(errs) > 0 {
				for _, field := range form.Fields {
					if msg, ok := errs[field.Key]; ok {
						fmt.Fprintf(cmd.Root().ErrWriter, "--%s: %s\n", flagName(field.Key), msg)
					}
				}
				return errInvalidInput
			}

			client, err := newClient(conf, logger)
			if err != nil {
				return err
			}

			result, err := client.Calculate(ctx, targets)
			if err != nil {
				logger.Error("optimization failed",
					zap.String("op", "main.optimize"),
					zap.Error(err),
				)
				return errors.New(optimizer.UserMessage(err))
			}

			return output.WriteResult(cmd.Root().Writer, outputFormat, result)
		},
	}
}

func ingredientsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ingredients",
		Usage: "Print the reference ingredient table",
		Flags: []cli.Flag{outputFormatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conf, err := loadConfiguration(cmd)
			if err != nil {
				return err
			}
			outputFormat, err := resolveOutputFormat(cmd, conf)
			if err != nil {
				return err
			}
			return output.WriteIngredients(cmd.Root().Writer, outputFormat, ingredients.All())
		},
	}
}

// flagName turns a field key into its CLI flag, e.g. desiredVitaminC -> vitamin-c.
func flagName(key string) string {
	switch key {
	case form.KeyProtein:
		return "protein"
	case form.KeyCarbs:
		return "carbs"
	case form.KeyFats:
		return "fats"
	case form.KeyVitaminC:
		return "vitamin-c"
	case form.KeyCalcium:
		return "calcium"
	default:
		return key
	}
}

// loadConfiguration reads --config. The default file is optional; an explicit
// path must exist.
func loadConfiguration(cmd *cli.Command) (*config.Configuration, error) {
	if err := loadEnvFile(cmd); err != nil {
		return nil, err
	}

	path := cmd.String("config")
	if !cmd.IsSet("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	if apiURL := cmd.String("api-url"); apiURL != "" {
		conf.Optimizer.BaseURL = apiURL
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// loadEnvFile reads --env-file without overriding variables already set. The
// default file is optional; an explicit path must exist.
func loadEnvFile(cmd *cli.Command) error {
	path := cmd.String("env-file")
	if path == "" {
		return nil
	}
	if !cmd.IsSet("env-file") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// resolveOutputFormat applies the CLI override over the configured format.
func resolveOutputFormat(cmd *cli.Command, conf *config.Configuration) (string, error) {
	outputFormat := conf.Output.Format
	if override := cmd.String("output-format"); override != "" {
		outputFormat = override
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

// mergeLogging lets the server config override individual logging settings.
func mergeLogging(dst *config.LoggingConfig, override config.LoggingConfig) {
	if override.Level != "" {
		dst.Level = override.Level
	}
	if override.Format != "" {
		dst.Format = override.Format
	}
	if override.OutputFile != "" {
		dst.OutputFile = override.OutputFile
	}
}

func logWarnings(logger *zap.Logger, conf *config.Configuration) {
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
}

func newClient(conf *config.Configuration, logger *zap.Logger) (*optimizer.Client, error) {
	if err := conf.RequireOptimizer(); err != nil {
		return nil, err
	}
	client, err := optimizer.NewClient(conf.Optimizer.BaseURL,
		optimizer.WithTimeout(conf.Optimizer.Timeout),
		optimizer.WithLogger(logger),
		optimizer.WithUserAgent(conf.Optimizer.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create optimizer client: %w", err)
	}
	return client, nil
}
