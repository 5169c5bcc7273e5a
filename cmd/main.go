package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"glucose-skill/handler"
	"glucose-skill/internal/config"
	"glucose-skill/internal/integrations/nightscout"
	"glucose-skill/internal/integrations/paramstore"
	"glucose-skill/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ---- Clients ----
	var (
		params nightscout.Getter
		opts   []nightscout.Option
	)
	if cfg.UsesParamStore() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			logger.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		params = ssmClient
	} else {
		opts = append(opts, nightscout.WithToken(cfg.CGMAPIToken))
	}

	cgmClient, err := nightscout.NewClient(cfg.CGMBaseURL, params, cfg.ParamPrefix, opts...)
	if err != nil {
		logger.Error("failed to create CGM client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	reporter, err := usecase.NewGlucoseReporter(cgmClient, logger)
	if err != nil {
		logger.Error("failed to create glucose reporter", "err", err)
		os.Exit(1)
	}
	router, err := usecase.NewRouter(logger, usecase.DefaultCandidates(reporter)...)
	if err != nil {
		logger.Error("failed to create router", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(router, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
