package checkout

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/kasira/internal/checkout/service"
)

var Module = fx.Module("checkout",
	fx.Provide(service.New),
)
