package chum5

import (
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// concurrentLoader derives identities from document content, so it needs
// no shared generator.
func concurrentLoader() *Loader {
	return NewLoader(Options{Logger: quietLogger(), Headless: true})
}

func TestLoadAllPreservesOrder(t *testing.T) {
	l := concurrentLoader()
	paths := []string{fixture("second.chum5"), fixture("valid.chum5"), fixture("legacy.chum5")}

	chars, err := l.LoadAll(context.Background(), paths, BatchOptions{Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, chars, 3)

	for i, c := range chars {
		assert.Equal(t, paths[i], c.FileName)
		assert.True(t, c.Usable(), c.FileName)
	}
	assert.Equal(t, "Kay Ortega", chars[0].Sheet.Name)
	assert.Equal(t, "Ada Kestrel", chars[1].Sheet.Name)
	assert.Equal(t, "Old Timer", chars[2].Sheet.Name)
}

func TestLoadAllMatchesIndividualLoads(t *testing.T) {
	l := concurrentLoader()
	fixtures := []string{"valid.chum5", "second.chum5", "legacy.chum5"}

	want := make(map[string]types.Sheet, len(fixtures))
	var paths []string
	for _, name := range fixtures {
		c, err := l.LoadFile(fixture(name))
		require.NoError(t, err)
		want[c.FileName] = c.Sheet
		for range 16 {
			paths = append(paths, c.FileName)
		}
	}

	chars, err := l.LoadAll(context.Background(), paths, BatchOptions{Concurrency: 8})
	require.NoError(t, err)
	require.Len(t, chars, len(paths))
	for i, c := range chars {
		require.True(t, c.Usable(), c.FileName)
		if diff := cmp.Diff(want[c.FileName], c.Sheet); diff != "" {
			t.Errorf("LoadAll entry %d (%s) differs from LoadFile (-want +got):\n%s", i, c.FileName, diff)
		}
	}
}

func TestLoadAllStopsOnFirstFailure(t *testing.T) {
	l := concurrentLoader()
	paths := []string{fixture("valid.chum5"), fixture("truncated.chum5"), fixture("second.chum5")}

	chars, err := l.LoadAll(context.Background(), paths, BatchOptions{Concurrency: 1})
	require.ErrorIs(t, err, types.ErrMalformedStream)
	require.Len(t, chars, 3)

	assert.True(t, chars[0].Usable())
	assert.False(t, chars[1].Usable())
	assert.False(t, chars[2].Usable(), "loads after the failure are skipped")
}

func TestLoadAllReportsEarliestFailure(t *testing.T) {
	l := concurrentLoader()
	paths := []string{
		fixture("valid.chum5"),
		fixture("truncated.chum5"),
		fixture("missing.chum5"),
		fixture("dangling.chum5"),
		fixture("second.chum5"),
	}

	for range 20 {
		chars, err := l.LoadAll(context.Background(), paths, BatchOptions{Concurrency: 4})
		require.ErrorIs(t, err, types.ErrMalformedStream)
		var le *types.LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, paths[1], le.File)
		assert.NotErrorIs(t, err, fs.ErrNotExist)

		assert.True(t, chars[0].Usable(), "paths before the failure still load")
		assert.False(t, chars[1].Usable())
	}
}

func TestLoadAllKeepGoing(t *testing.T) {
	l := concurrentLoader()
	paths := []string{
		fixture("truncated.chum5"),
		fixture("valid.chum5"),
		fixture("missing.chum5"),
		fixture("second.chum5"),
	}

	chars, err := l.LoadAll(context.Background(), paths, BatchOptions{Concurrency: 2, KeepGoing: true})
	var be *types.BatchError
	require.ErrorAs(t, err, &be)
	require.Len(t, be.Failures, 2)
	assert.ErrorIs(t, be.Failures[0], types.ErrMalformedStream)
	assert.ErrorIs(t, be.Failures[1], fs.ErrNotExist)
	assert.ErrorIs(t, err, types.ErrMalformedStream)

	assert.False(t, chars[0].Usable())
	assert.True(t, chars[1].Usable())
	assert.False(t, chars[2].Usable())
	assert.True(t, chars[3].Usable())
}

func TestLoadAllCancelledContext(t *testing.T) {
	l := concurrentLoader()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chars, err := l.LoadAll(ctx, []string{fixture("valid.chum5"), fixture("second.chum5")}, BatchOptions{KeepGoing: true})
	require.ErrorIs(t, err, context.Canceled)
	for _, c := range chars {
		assert.False(t, c.Usable())
	}
}

func TestLoadAllEmpty(t *testing.T) {
	chars, err := concurrentLoader().LoadAll(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, chars)
}
