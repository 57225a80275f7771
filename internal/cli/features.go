package cli

import (
	"context"

	"github.com/dmitrijs2005/runas/internal/bootstrap"
	"github.com/dmitrijs2005/runas/internal/cluster"
)

// Features lists the features the cluster reports.
func (a *App) Features(ctx context.Context, force bool) error {
	orch, err := a.orchestrator(force)
	if err != nil {
		return err
	}
	return orch.Run(ctx, func(ctx context.Context, s *bootstrap.Session) error {
		features, err := cluster.Features(ctx, a.requester, s.Credentials())
		if err != nil {
			return err
		}
		for _, f := range features {
			a.printf("%s: %s\n", f.Name, f.Description)
		}
		return nil
	})
}
