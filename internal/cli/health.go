package cli

import (
	"context"

	"github.com/dmitrijs2005/runas/internal/bootstrap"
)

// Health prints the cluster status seen by the temporary user.
func (a *App) Health(ctx context.Context, force bool) error {
	orch, err := a.orchestrator(force)
	if err != nil {
		return err
	}
	return orch.Run(ctx, func(_ context.Context, s *bootstrap.Session) error {
		a.printf("Cluster health status: %s\n", s.Health)
		return nil
	})
}
