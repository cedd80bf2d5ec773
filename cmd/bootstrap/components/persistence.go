package components

import (
	"booking-reconciler/internal/infra/uow"
	"booking-reconciler/internal/usecase/shared"

	"go.uber.org/fx"
)

// Stores and repositories are built per transaction inside the unit of work,
// so the pool-backed UnitOfWork is the only persistence binding.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
	),
)
