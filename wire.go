package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/auth"
	"storefront/internal/carts"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/customers"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/metrics"
	"storefront/internal/orders"
	"storefront/internal/reporting"
	"storefront/internal/reviews"
	"storefront/internal/server"
	"storefront/internal/wishlist"
)

// buildRouter wires repositories, services and the HTTP surface. Reviews are
// built first because the catalog reads ratings from them and the review
// ledger in turn asks the catalog to recompute.
func buildRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db *mongo.Database,
	registry *prometheus.Registry,
	checkoutMetrics *metrics.CheckoutMetrics,
	httpMetrics *metrics.HTTPMetrics,
) (http.Handler, error) {
	uploader, err := media.NewLocalUploader(media.Options{
		Dir:         cfg.Media.UploadDir,
		PublicURL:   cfg.Media.PublicURL,
		MaxFileSize: cfg.Media.MaxFileSize,
		Logger:      logg,
	})
	if err != nil {
		return nil, err
	}

	reviewRepo := reviews.NewMongoRepository(db)
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:     catalog.NewMongoRepository(db),
		Ratings:  reviewRepo,
		Uploader: uploader,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	reviewLedger, err := reviews.NewLedger(reviewRepo, catalogService, checkoutMetrics, logg)
	if err != nil {
		return nil, err
	}

	directory, err := customers.NewDirectory(customers.NewMongoRepository(db), logg)
	if err != nil {
		return nil, err
	}
	orderLedger, err := orders.NewLedger(orders.NewMongoRepository(db), logg)
	if err != nil {
		return nil, err
	}
	pipeline, err := checkout.NewPipeline(checkout.Params{
		Catalog:  catalogService,
		Orders:   orderLedger,
		Profiles: directory,
		Numbers:  orders.NumberGenerator{},
		Metrics:  checkoutMetrics,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}

	cartService, err := carts.NewService(carts.NewMongoRepository(db), catalogService)
	if err != nil {
		return nil, err
	}
	wishlistService, err := wishlist.NewService(wishlist.NewMongoRepository(db), catalogService)
	if err != nil {
		return nil, err
	}
	reports, err := reporting.NewService(reporting.Params{
		Customers: directory,
		Products:  catalogService,
		Orders:    orderLedger,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	credentials, err := auth.NewAdminCredentials(cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return nil, err
	}

	return server.NewRouter(server.Deps{
		Logger:      logg,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
		Verifier:    tokens,
		Credentials: credentials,
		Tokens:      tokens,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		Products:  catalogService,
		Checkout:  pipeline,
		Orders:    orderLedger,
		Customers: directory,
		Reviews:   reviewLedger,
		Wishlist:  wishlistService,
		Carts:     cartService,
		Reports:   reports,
		UploadDir: cfg.Media.UploadDir,
	}), nil
}
