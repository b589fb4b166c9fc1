package logger

import (
	"go.uber.org/zap"

	"carewise/internal/config"
)

// New returns a production logger when running in production and a
// development logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
