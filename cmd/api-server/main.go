// Command api-server runs the storefront HTTP API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	storefront "github.com/hausmart/storefront/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := storefront.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		lg.Info("starting storefront", zap.String("addr", cfg.Addr))
		return storefront.Run(ctx, lg, m, cfg)
	})
}
