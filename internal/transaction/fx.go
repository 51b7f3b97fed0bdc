package transaction

import (
	"github.com/smallbiznis/kasira/internal/transaction/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.repository",
	fx.Provide(repository.Provide),
)
