// Package bootstrap runs one privileged action as a temporary file realm
// superuser. The user is added to the users_roles file, then to the users
// file, the cluster is probed as that user and the action is invoked.
// Whatever happens after the roles file was written, the user is removed
// from both files before Run returns.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/runas/internal/cluster"
	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/dmitrijs2005/runas/internal/cryptox"
	"github.com/dmitrijs2005/runas/internal/journal"
	"github.com/dmitrijs2005/runas/internal/logging"
	"github.com/dmitrijs2005/runas/internal/realm"
)

// Store reads and rewrites the file realm files.
type Store interface {
	LoadUsers(ctx context.Context) (map[string][]byte, error)
	LoadRoles(ctx context.Context) (map[string][]string, error)
	WriteUsers(ctx context.Context, users map[string][]byte) error
	WriteRoles(ctx context.Context, roles map[string][]string) error
	Snapshot() *realm.Snapshot
}

// HealthChecker verifies the cluster accepts the temporary user.
type HealthChecker interface {
	Check(ctx context.Context, username string, password []byte, retries int, force bool) (cluster.Verdict, error)
}

// CredentialSource produces the temporary account.
type CredentialSource interface {
	Username() string
	Password(length int) []byte
}

// RealmPolicy tells whether the file realm can authenticate the user.
type RealmPolicy interface {
	FileRealmUsable() (realm string, ok bool)
}

// Journal records temporary accounts. It is optional.
type Journal interface {
	Begin(ctx context.Context, runID, username string) error
	Finish(ctx context.Context, runID, outcome string) error
}

// Session is what an action receives. Password is wiped once Run returns,
// so actions must neither keep nor wipe it.
type Session struct {
	Username string
	Password []byte
	Health   cluster.Verdict
}

// Credentials returns the session account for cluster requests.
func (s *Session) Credentials() cluster.Credentials {
	return cluster.Credentials{Username: s.Username, Password: s.Password}
}

// Action is the privileged work performed as the temporary user.
type Action func(ctx context.Context, s *Session) error

// Options tune a run.
type Options struct {
	RunID          string
	Retries        int
	Force          bool
	PasswordLength int
}

// Deps are the collaborators of an Orchestrator. Journal, Out and Logger
// may be nil.
type Deps struct {
	Realm   RealmPolicy
	Store   Store
	Hasher  cryptox.Hasher
	Prober  HealthChecker
	Creds   CredentialSource
	Journal Journal
	Out     io.Writer
	Logger  logging.Logger
}

type Orchestrator struct {
	realm   RealmPolicy
	store   Store
	hasher  cryptox.Hasher
	prober  HealthChecker
	creds   CredentialSource
	journal Journal
	out     io.Writer
	logger  logging.Logger
	opts    Options
	state   State
}

func New(deps Deps, opts Options) *Orchestrator {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if opts.PasswordLength <= 0 {
		opts.PasswordLength = common.DefaultPasswordLength
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Orchestrator{
		realm:   deps.Realm,
		store:   deps.Store,
		hasher:  deps.Hasher,
		prober:  deps.Prober,
		creds:   deps.Creds,
		journal: deps.Journal,
		out:     deps.Out,
		logger:  deps.Logger,
		opts:    opts,
	}
}

// State returns the step the last run reached.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(ctx context.Context, s State) {
	o.logger.Debug(ctx, "bootstrap state", "from", o.state.String(), "to", s.String())
	o.state = s
}

// Run creates the temporary superuser, verifies cluster health as that user
// and invokes action. Errors carry an exit category; a cleanup failure is
// returned only when nothing failed before it.
func (o *Orchestrator) Run(ctx context.Context, action Action) (err error) {
	defer func() { err = common.Categorize(err) }()

	o.state = StateInit
	if o.realm != nil {
		if name, ok := o.realm.FileRealmUsable(); !ok {
			return common.ConfigError("File realm must be enabled", fmt.Errorf("%w [%s]", common.ErrRealmDisabled, name))
		}
	}

	username := o.creds.Username()
	password := o.creds.Password(o.opts.PasswordLength)
	defer common.WipeByteArray(password)

	logger := o.logger.With("user", username)
	journaled := o.begin(ctx, logger, username)
	snap := o.store.Snapshot()

	// roles go first so the user is a superuser the moment it can log in
	roles, err := o.store.LoadRoles(ctx)
	if err != nil {
		o.finish(ctx, logger, journaled, journal.OutcomeFailed)
		return err
	}
	roles[username] = []string{common.SuperuserRole}
	if err := o.store.WriteRoles(ctx, roles); err != nil {
		o.finish(ctx, logger, journaled, journal.OutcomeFailed)
		return err
	}
	o.setState(ctx, StateRolesWritten)

	defer func() {
		o.setState(ctx, StateCleaningUp)
		cerr := o.cleanup(context.WithoutCancel(ctx), username, snap)

		outcome := journal.OutcomeOK
		switch {
		case cerr != nil:
			outcome = journal.OutcomeCleanupFailed
		case err != nil:
			outcome = journal.OutcomeFailed
		}
		o.finish(ctx, logger, journaled, outcome)

		if cerr != nil {
			if err != nil {
				logger.Error(ctx, "failed to remove temporary user", "error", cerr)
			} else {
				err = cerr
			}
		}
		o.setState(ctx, StateDone)
	}()

	users, err := o.store.LoadUsers(ctx)
	if err != nil {
		return err
	}
	hash, err := o.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password of %s: %w", username, err)
	}
	users[username] = hash
	if err := o.store.WriteUsers(ctx, users); err != nil {
		return err
	}
	o.setState(ctx, StatePasswordWritten)

	for _, d := range snap.Check(o.out) {
		logger.Warn(ctx, "realm file attributes changed", "path", d.Path, "field", d.Field, "before", d.Before, "after", d.After)
	}

	verdict, err := o.prober.Check(ctx, username, password, o.opts.Retries, o.opts.Force)
	if err != nil {
		return err
	}
	o.setState(ctx, StateHealthVerified)
	logger.Info(ctx, "cluster health verified", "status", verdict.String())

	o.setState(ctx, StateActionRunning)
	return action(ctx, &Session{Username: username, Password: password, Health: verdict})
}

// cleanup removes username from the users file and then the users_roles
// file. Files that no longer hold the user are left untouched.
func (o *Orchestrator) cleanup(ctx context.Context, username string, snap *realm.Snapshot) error {
	var msgs []string

	users, err := o.store.LoadUsers(ctx)
	if err != nil {
		msgs = append(msgs, err.Error())
	} else if hash, ok := users[username]; ok {
		delete(users, username)
		common.WipeByteArray(hash)
		if err := o.store.WriteUsers(ctx, users); err != nil {
			msgs = append(msgs, err.Error())
		}
	}

	roles, err := o.store.LoadRoles(ctx)
	if err != nil {
		msgs = append(msgs, err.Error())
	} else if _, ok := roles[username]; ok {
		delete(roles, username)
		if err := o.store.WriteRoles(ctx, roles); err != nil {
			msgs = append(msgs, err.Error())
		}
	}

	if len(msgs) > 0 {
		return common.ConfigError(strings.Join(msgs, " , "), nil)
	}
	snap.Check(o.out)
	return nil
}

func (o *Orchestrator) begin(ctx context.Context, logger logging.Logger, username string) bool {
	if o.journal == nil {
		return false
	}
	if err := o.journal.Begin(ctx, o.opts.RunID, username); err != nil {
		logger.Warn(ctx, "failed to journal temporary user", "error", err)
		return false
	}
	return true
}

func (o *Orchestrator) finish(ctx context.Context, logger logging.Logger, journaled bool, outcome string) {
	if !journaled {
		return
	}
	if err := o.journal.Finish(context.WithoutCancel(ctx), o.opts.RunID, outcome); err != nil {
		logger.Warn(ctx, "failed to journal run outcome", "outcome", outcome, "error", err)
	}
}
