package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, gitlyerrors.Kind(""), gitlyerrors.KindOf(nil))
	require.Equal(t, gitlyerrors.KindStoreError, gitlyerrors.KindOf(errors.New("plain")))

	tagged := gitlyerrors.New(gitlyerrors.KindNotOnABranch, "current branch", nil)
	require.Equal(t, gitlyerrors.KindNotOnABranch, gitlyerrors.KindOf(tagged))

	wrapped := fmt.Errorf("dispatch: %w", tagged)
	require.Equal(t, gitlyerrors.KindNotOnABranch, gitlyerrors.KindOf(wrapped))
}

func TestErrorIs(t *testing.T) {
	err := gitlyerrors.New(gitlyerrors.KindAlreadyExists, "create branch", errors.New("ref exists"))

	require.ErrorIs(t, err, gitlyerrors.ErrAlreadyExists)
	require.NotErrorIs(t, err, gitlyerrors.ErrReferenceNotFound)

	// a tagged error with context is not itself a sentinel
	require.False(t, errors.Is(gitlyerrors.ErrAlreadyExists, err))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("permission denied")

	require.Equal(t, "read refs: permission denied", gitlyerrors.New(gitlyerrors.KindStoreError, "read refs", cause).Error())
	require.Equal(t, "read refs", gitlyerrors.New(gitlyerrors.KindStoreError, "read refs", nil).Error())
	require.Equal(t, "permission denied", gitlyerrors.New(gitlyerrors.KindStoreError, "", cause).Error())
	require.Equal(t, "store_error", gitlyerrors.ErrStore.Error())
	require.Equal(t, "branch x: 3", gitlyerrors.Newf(gitlyerrors.KindInvalidArgument, "branch %s: %d", "x", 3).Error())
}

func TestBranchNotFoundError(t *testing.T) {
	err := gitlyerrors.NewBranchNotFoundError("feature")

	require.ErrorIs(t, err, gitlyerrors.ErrReferenceNotFound)
	require.Equal(t, gitlyerrors.KindReferenceNotFound, gitlyerrors.KindOf(err))
	require.Equal(t, "branch feature does not exist", err.Error())

	var notFound *gitlyerrors.BranchNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "feature", notFound.BranchName)
}
