package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blooddonor/internal/db"
	"blooddonor/internal/directory"
	"blooddonor/internal/identity"
	"blooddonor/internal/metrics"
	"blooddonor/internal/search"
	"blooddonor/internal/server"
	"blooddonor/internal/session"
	"blooddonor/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.GetLevel())

	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	dir := directory.New(store.NewDonorRepository(pool), logger, m)

	provider := identity.NewProvider(
		cognitoidentityprovider.NewFromConfig(awsConfig),
		config.CognitoClientID,
		config.AdminEmail,
		logger,
	)

	issuer := config.CognitoIssuerURL
	if issuer == "" {
		issuer = identity.IssuerURL(awsConfig.Region, config.CognitoUserPoolID)
	}
	jwksURL := identity.JWKSURL(issuer)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	err = jwkCache.Register(ctx, jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	verifier := identity.NewVerifier(jwkCache, jwksURL, issuer, config.CognitoClientID, provider.IsAdmin)

	var sequencer search.Sequencer = search.NewMemorySequencer()
	redisClient, err := search.NewRedisClient(ctx, config.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sequencer = search.NewRedisSequencer(redisClient)
		logger.Info("search sequencing backed by redis")
	}

	finder := search.NewFinder(dir, sequencer, time.Duration(config.SearchTimeoutSec)*time.Second, logger, m)

	hashKey, blockKey, generated, err := session.DecodeKeys(config.CookieHashKey, config.CookieBlockKey)
	if err != nil {
		return err
	}
	if generated {
		logger.Warn("cookie keys not configured, sessions will not survive a restart")
	}
	sessions := session.NewManager(
		hashKey,
		blockKey,
		time.Duration(config.SessionMaxAgeSec)*time.Second,
		config.Environment != "development",
	)

	srv, err := server.New(config, logger, dir, provider, verifier, finder, sessions, m, registry)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
