package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/runas/internal/bootstrap"
	"github.com/dmitrijs2005/runas/internal/cluster"
	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/sethvargo/go-password/password"
)

const (
	generatedPasswordLength  = 20
	generatedPasswordDigits  = 4
	generatedPasswordSymbols = 2
	minPasswordLength        = 6
)

var errPasswordTooShort = errors.New("password must be at least 6 characters long")

// ResetPasswordOptions select how the new password is obtained.
type ResetPasswordOptions struct {
	Username    string
	Interactive bool
	Batch       bool
	Force       bool
}

// ResetPassword sets a new password for a user through the security API,
// either generated or typed by the operator.
func (a *App) ResetPassword(ctx context.Context, reader *bufio.Reader, opts ResetPasswordOptions) error {
	if opts.Username == "" {
		return common.NewError(common.ExitUsage, "Missing required option [-u/--username]", nil)
	}

	if !opts.Batch {
		prompt := fmt.Sprintf("This tool will reset the password of the [%s] user to an autogenerated value.\n"+
			"The password will be printed in the console.\n"+
			"Please confirm that you would like to continue", opts.Username)
		if opts.Interactive {
			prompt = fmt.Sprintf("This tool will reset the password of the [%s] user.\n"+
				"You will be prompted to enter the password.\n"+
				"Please confirm that you would like to continue", opts.Username)
		}
		ok, err := Confirm(reader, prompt, a.streams.Out)
		if err != nil {
			return err
		}
		if !ok {
			a.printf("\nCancelled\n")
			return nil
		}
	}

	newPassword, err := a.newPassword(opts)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	orch, err := a.orchestrator(opts.Force)
	if err != nil {
		return err
	}
	err = orch.Run(ctx, func(ctx context.Context, s *bootstrap.Session) error {
		return cluster.ChangePassword(ctx, a.requester, s.Credentials(), opts.Username, newPassword)
	})
	if err != nil {
		return err
	}

	a.printf("Password for the [%s] user successfully reset.\n", opts.Username)
	if !opts.Interactive {
		a.printf("New value: %s\n", newPassword)
	}
	return nil
}

func (a *App) newPassword(opts ResetPasswordOptions) ([]byte, error) {
	if !opts.Interactive {
		pw, err := password.Generate(generatedPasswordLength, generatedPasswordDigits, generatedPasswordSymbols, false, true)
		if err != nil {
			return nil, fmt.Errorf("generating password: %w", err)
		}
		return []byte(pw), nil
	}

	first, err := GetPassword(a.streams.Out, fmt.Sprintf("Enter password for [%s]: ", opts.Username))
	if err != nil {
		return nil, err
	}
	if len(first) < minPasswordLength {
		common.WipeByteArray(first)
		return nil, common.DataError("", errPasswordTooShort)
	}
	second, err := GetPassword(a.streams.Out, fmt.Sprintf("Re-enter password for [%s]: ", opts.Username))
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)
	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, common.DataError("", common.ErrPasswordMismatch)
	}
	return first, nil
}
