// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestPutAndRecent(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.Put(ctx, "library hours?", "Open until 10pm.", base))
	require.NoError(t, a.Put(ctx, "exam schedule", "Posted on the portal.", base.Add(time.Hour)))

	got, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "exam schedule", got[0].Query)
	assert.Equal(t, "library hours?", got[1].Query)
	assert.Equal(t, base.Unix(), got[1].CreatedAt.Unix())
}

func TestRecentLimit(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ts := time.Date(2025, 3, 1, 10, i, 0, 0, time.UTC)
		require.NoError(t, a.Put(ctx, "q", "r", ts))
	}

	got, err := a.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearch(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, a.Put(ctx, "library hours today?", "The library is open until 10pm.", now))
	require.NoError(t, a.Put(ctx, "cafeteria menu", "Pasta and salad.", now))

	got, err := a.Search(ctx, "library", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Response, "10pm")

	// Matches in the response side too.
	got, err = a.Search(ctx, "pasta", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Punctuation in the query must not break the match expression.
	got, err = a.Search(ctx, `"library (hours)`, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	a := openTestArchive(t)

	got, err := a.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClear(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "q", "r", time.Now()))
	require.NoError(t, a.Clear(ctx))

	n, err := a.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// FTS index is emptied by the delete trigger as well.
	got, err := a.Search(ctx, "q", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordSatisfiesRecorder(t *testing.T) {
	a := openTestArchive(t)

	require.NoError(t, a.Record("attendance?", "85%", time.Now()))

	n, err := a.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClosedArchive(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Close())

	ctx := context.Background()
	assert.ErrorIs(t, a.Put(ctx, "q", "r", time.Now()), ErrClosed)
	_, err := a.Recent(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Search(ctx, "q", 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Clear(ctx), ErrClosed)

	// Double close is a no-op.
	assert.NoError(t, a.Close())
}
