package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/samber/lo"
)

// Sweep reports temporary users still present in the realm files or left
// unfinished in the journal, and removes them when remove is set.
func (a *App) Sweep(ctx context.Context, remove bool) error {
	users, err := a.store.LoadUsers(ctx)
	if err != nil {
		return err
	}
	roles, err := a.store.LoadRoles(ctx)
	if err != nil {
		return err
	}

	isTemporary := func(name string) bool { return strings.HasPrefix(name, common.UsernamePrefix) }
	found := lo.Filter(lo.Uniq(append(lo.Keys(users), lo.Keys(roles)...)), func(name string, _ int) bool {
		return isTemporary(name)
	})

	var pending []string
	if a.journal != nil {
		entries, err := a.journal.Pending(ctx)
		if err != nil {
			a.logger.Warn(ctx, "failed to read run journal", "error", err)
		}
		for _, e := range entries {
			pending = append(pending, e.Username)
		}
	}

	names := lo.Uniq(append(found, pending...))
	sort.Strings(names)
	if len(names) == 0 {
		a.printf("No temporary users found\n")
		return nil
	}

	for _, name := range names {
		where := "journal only"
		if lo.Contains(found, name) {
			where = "realm files"
		}
		a.printf("%s (%s)\n", name, where)
	}
	if !remove {
		a.printf("Run again with --remove to delete %d temporary user(s)\n", len(names))
		return nil
	}

	for _, name := range found {
		res, err := a.store.RemoveUser(ctx, name)
		if err != nil {
			return common.ConfigError("Failed to remove temporary user ["+name+"]", err)
		}
		a.logger.Info(ctx, "removed temporary user", "user", name, "users_file", res.FromUsers, "roles_file", res.FromRoles)
	}
	if a.journal != nil {
		n, err := a.journal.MarkSwept(ctx, names)
		if err != nil {
			a.logger.Warn(ctx, "failed to update run journal", "error", err)
		} else {
			a.logger.Debug(ctx, "journal entries closed", "count", n)
		}
	}
	a.printf("Removed %d temporary user(s)\n", len(found))
	return nil
}
