package pass

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sana-care/sana-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	stdin string
	args  []string
}

func fakeRunner(calls *[]call, stdout string, stderr string, err error) commandRunner {
	return func(_ context.Context, stdin string, args ...string) (string, string, error) {
		*calls = append(*calls, call{stdin: stdin, args: args})
		return stdout, stderr, err
	}
}

func TestPutInsertsMultilineForced(t *testing.T) {
	t.Parallel()

	var calls []call
	store := &Store{run: fakeRunner(&calls, "", "", nil)}

	require.NoError(t, store.Put(context.Background(), "sana/auth/accessToken", "secret"))

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"insert", "-m", "-f", "sana/auth/accessToken"}, calls[0].args)
	assert.Equal(t, "secret\n", calls[0].stdin)
}

func TestGetTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	var calls []call
	store := &Store{run: fakeRunner(&calls, "secret-value\n", "", nil)}

	got, err := store.Get(context.Background(), "sana/auth/accessToken")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", got)
}

func TestGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	var calls []call
	stderr := "Error: sana/auth/accessToken is not in the password store."
	store := &Store{run: fakeRunner(&calls, "", stderr, errors.New("exit status 1"))}

	_, err := store.Get(context.Background(), "sana/auth/accessToken")
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
}

func TestGetSurfacesOtherFailures(t *testing.T) {
	t.Parallel()

	var calls []call
	store := &Store{run: fakeRunner(&calls, "", "gpg: decryption failed", errors.New("exit status 2"))}

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSecretNotFound)
	assert.True(t, strings.Contains(err.Error(), "decryption failed"))
}

func TestDeleteToleratesMissingEntry(t *testing.T) {
	t.Parallel()

	var calls []call
	stderr := "Error: k is not in the password store."
	store := &Store{run: fakeRunner(&calls, "", stderr, errors.New("exit status 1"))}

	assert.NoError(t, store.Delete(context.Background(), "k"))
}

func TestCancelledContextShortCircuits(t *testing.T) {
	t.Parallel()

	var calls []call
	store := &Store{run: fakeRunner(&calls, "", "", nil)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls, "no command may run after cancellation")
}
