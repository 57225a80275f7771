package realm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/dmitrijs2005/runas/internal/filex"
	"github.com/dmitrijs2005/runas/internal/logging"
)

const (
	UsersFile = "users"
	RolesFile = "users_roles"

	// filePerm applies only when a file is created from scratch.
	filePerm fs.FileMode = 0o660
)

// Store is the file realm backed by <dir>/users and <dir>/users_roles.
type Store struct {
	usersPath string
	rolesPath string
	logger    logging.Logger
}

// NewStore returns a Store for the realm files in configDir.
func NewStore(configDir string, logger logging.Logger) *Store {
	return &Store{
		usersPath: filepath.Join(configDir, UsersFile),
		rolesPath: filepath.Join(configDir, RolesFile),
		logger:    logger,
	}
}

func (s *Store) UsersPath() string { return s.usersPath }
func (s *Store) RolesPath() string { return s.rolesPath }

// LoadUsers returns username -> password hash.
func (s *Store) LoadUsers(ctx context.Context) (map[string][]byte, error) {
	data, err := readRealmFile(s.usersPath)
	if err != nil {
		return nil, err
	}
	users, skipped := parseUsers(data)
	s.warnSkipped(ctx, s.usersPath, skipped)
	return users, nil
}

// LoadRoles returns username -> roles. Roles listed without users are kept
// under the empty username.
func (s *Store) LoadRoles(ctx context.Context) (map[string][]string, error) {
	data, err := readRealmFile(s.rolesPath)
	if err != nil {
		return nil, err
	}
	roles, skipped := parseRoles(data)
	s.warnSkipped(ctx, s.rolesPath, skipped)
	return roles, nil
}

// WriteUsers replaces the users file with users.
func (s *Store) WriteUsers(_ context.Context, users map[string][]byte) error {
	if err := filex.WriteAtomic(s.usersPath, formatUsers(users), filePerm); err != nil {
		return fmt.Errorf("writing users file: %w", err)
	}
	return nil
}

// WriteRoles replaces the users_roles file with roles.
func (s *Store) WriteRoles(_ context.Context, roles map[string][]string) error {
	if err := filex.WriteAtomic(s.rolesPath, formatRoles(roles), filePerm); err != nil {
		return fmt.Errorf("writing users_roles file: %w", err)
	}
	return nil
}

// Snapshot captures the current attributes of both realm files.
func (s *Store) Snapshot() *Snapshot {
	return TakeSnapshot(s.usersPath, s.rolesPath)
}

// RemoveResult tells which files RemoveUser rewrote.
type RemoveResult struct {
	FromUsers bool
	FromRoles bool
}

// RemoveUser deletes username from the users file and then from the
// users_roles file. A file is rewritten only when it contained the user, so
// a second call is a no-op. Both files are always attempted; failures are
// joined.
func (s *Store) RemoveUser(ctx context.Context, username string) (RemoveResult, error) {
	var res RemoveResult
	var errs []error

	users, err := s.LoadUsers(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if hash, ok := users[username]; ok {
		delete(users, username)
		common.WipeByteArray(hash)
		if err := s.WriteUsers(ctx, users); err != nil {
			errs = append(errs, err)
		} else {
			res.FromUsers = true
		}
	}

	roles, err := s.LoadRoles(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if _, ok := roles[username]; ok {
		delete(roles, username)
		if err := s.WriteRoles(ctx, roles); err != nil {
			errs = append(errs, err)
		} else {
			res.FromRoles = true
		}
	}

	return res, errors.Join(errs...)
}

func (s *Store) warnSkipped(ctx context.Context, path string, lines []int) {
	if len(lines) == 0 || s.logger == nil {
		return
	}
	s.logger.Warn(ctx, "skipped malformed realm file lines", "file", path, "lines", lines)
}

func readRealmFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ConfigError("", fmt.Errorf("%w: [%s]", common.ErrConfigMissing, path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
