package waitlistservice

import (
	"log/slog"

	httpadapter "tokeniza/contexts/investor-relations/waitlist-service/adapters/http"
	"tokeniza/contexts/investor-relations/waitlist-service/adapters/memory"
	"tokeniza/contexts/investor-relations/waitlist-service/application/commands"
	"tokeniza/contexts/investor-relations/waitlist-service/application/queries"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Entries     ports.WaitlistRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			JoinWaitlist: commands.JoinWaitlistUseCase{
				Entries:     deps.Entries,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			UpdateStatus: commands.UpdateStatusUseCase{
				Entries: deps.Entries,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			ListEntries: queries.ListEntriesUseCase{
				Entries: deps.Entries,
				Logger:  deps.Logger,
			},
			Stats: queries.StatsUseCase{
				Entries: deps.Entries,
				Logger:  deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	module := NewModule(Dependencies{
		Entries:     store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
