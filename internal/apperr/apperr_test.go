package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"readme_updater/internal/apperr"

	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", fmt.Errorf("load: %w", apperr.ErrConfig), 2},
		{"generation", &apperr.GenerationError{Stage: "entry", Err: apperr.ErrEmptyContent}, 3},
		{"persistence", fmt.Errorf("run: %w", &apperr.PersistenceError{Path: "README.md", Err: errors.New("disk full")}), 4},
		{"commit", &apperr.CommitError{Op: "commit", Err: errors.New("exit status 1")}, 5},
		{"timeout", fmt.Errorf("collect: %w", context.DeadlineExceeded), 6},
		{"timeout during git", &apperr.CommitError{Op: "push", Err: context.DeadlineExceeded}, 6},
		{"timeout during write", &apperr.PersistenceError{Path: "README.md", Err: context.DeadlineExceeded}, 6},
		{"other", errors.New("boom"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apperr.ExitCode(tc.err))
		})
	}
}

func TestNewProviderError_Kind(t *testing.T) {
	err := apperr.NewProviderError("weather", fmt.Errorf("get: %w", context.DeadlineExceeded))
	require.Equal(t, apperr.KindTimeout, err.Kind)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	err = apperr.NewProviderError("weather", errors.New("connection refused"))
	require.Equal(t, apperr.KindNetwork, err.Kind)
}

func TestProviderError_Message(t *testing.T) {
	err := &apperr.ProviderError{Provider: "cat", Kind: apperr.KindStatus, StatusCode: 503, Err: errors.New("unexpected status")}
	require.Equal(t, "provider cat: status (status 503): unexpected status", err.Error())

	var target *apperr.ProviderError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	require.Equal(t, "cat", target.Provider)
}
