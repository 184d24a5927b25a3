package location

import (
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/config"
)

// NewProvider builds the server's provider: the device-reported position
// first, then the IP lookup service when one is configured.
func NewProvider(cfg config.LocationConfig, logger *zap.Logger) Provider {
	locators := []Locator{Reported()}
	if cfg.LookupURL != "" {
		locators = append(locators, NewIPLookup(cfg.LookupURL, logger))
	}
	return NewBestEffort(Chain(locators...), cfg.Timeout, logger)
}
