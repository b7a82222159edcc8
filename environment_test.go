package rideshare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentClosers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := &envState{settings: &Settings{}, closers: map[string]func(context.Context) error{}}

	var calls int32
	env.RegisterCloser("first", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	env.RegisterCloser("second", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("second failed")
	})
	env.RegisterCloser("nil", nil)

	err := env.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second failed")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestEnvironmentWithoutClient(t *testing.T) {
	env := &envState{settings: &Settings{Database: DBSettings{DB: "test"}}}
	assert.Nil(t, env.Client())
	assert.Nil(t, env.DB())
	assert.Equal(t, "test", env.Settings().Database.DB)
}

func TestGlobalEnvironment(t *testing.T) {
	original := GetEnvironment()
	defer SetEnvironment(original)

	env := &envState{settings: &Settings{Environment: EnvironmentProduction}}
	SetEnvironment(env)
	assert.True(t, GetEnvironment().Settings().IsProduction())
}

func TestTLSConfigFromCAFile(t *testing.T) {
	dir := t.TempDir()

	_, err := tlsConfigFromCAFile(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0600))
	_, err = tlsConfigFromCAFile(garbage)
	assert.Error(t, err)
}
