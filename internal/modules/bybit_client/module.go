package bybit_client

import (
	"go.uber.org/fx"

	"signal_trader/internal/modules/bybit_client/service"
	"signal_trader/internal/modules/config"
	"signal_trader/internal/runner"
)

var (
	_ runner.MarketData      = (*service.Client)(nil)
	_ runner.AccountReader   = (*service.Client)(nil)
	_ runner.OrderDispatcher = (*service.Client)(nil)
	_ runner.VenueRejection  = (*service.APIError)(nil)
)

func NewClient(cfg *config.Config) *service.Client {
	return service.NewClient(service.Config{
		APIKey:      cfg.Bybit.APIKey,
		APISecret:   cfg.Bybit.APISecret,
		BaseURL:     cfg.Bybit.BaseURL,
		RecvWindow:  cfg.Bybit.RecvWindow,
		AccountType: cfg.Bybit.AccountType,
		Timeout:     cfg.Bybit.Timeout,
	})
}

// Module — REST-клиент Bybit как источник цены/счёта/позиции и диспетчер ордеров.
func Module() fx.Option {
	return fx.Module("bybit_client",
		fx.Provide(
			NewClient,
			func(c *service.Client) runner.MarketData { return c },
			func(c *service.Client) runner.AccountReader { return c },
			func(c *service.Client) runner.OrderDispatcher { return c },
		),
	)
}
