package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"msg only", ConfigError("bad config", nil), "bad config"},
		{"err only", DataError("", errors.New("boom")), "boom"},
		{"msg and err", UnavailableError("probe failed", errors.New("refused")), "probe failed: refused"},
		{"neither", NewError(ExitConfig, "", nil), "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_UnwrapKeepsSentinel(t *testing.T) {
	err := ConfigError("roles", ErrConfigMissing)
	assert.ErrorIs(t, err, ErrConfigMissing)

	wrapped := fmt.Errorf("setup: %w", err)
	assert.ErrorIs(t, wrapped, ErrConfigMissing)
	assert.Equal(t, ExitConfig, ExitCodeOf(wrapped))
}

func TestCategorize(t *testing.T) {
	assert.NoError(t, Categorize(nil))

	categorized := UnavailableError("down", nil)
	assert.Same(t, categorized, Categorize(categorized))

	plain := errors.New("plain")
	got := Categorize(plain)
	require.Error(t, got)
	assert.Equal(t, ExitDataError, ExitCodeOf(got))
	assert.ErrorIs(t, got, plain)
	assert.Equal(t, "plain", got.Error())
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeOf(nil))
	assert.Equal(t, ExitDataError, ExitCodeOf(errors.New("x")))
	assert.Equal(t, ExitUnavailable, ExitCodeOf(UnavailableError("x", nil)))
	assert.Equal(t, ExitConfig, ExitCodeOf(fmt.Errorf("outer: %w", ConfigError("x", nil))))
}

func TestExitCode_String(t *testing.T) {
	assert.Equal(t, "data error", ExitDataError.String())
	assert.Equal(t, "exit(3)", ExitCode(3).String())
}
