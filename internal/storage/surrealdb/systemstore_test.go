package surrealdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemKVRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewSystemStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SetKV(ctx, "token_secret", "abc123"))

	got, err := store.GetKV(ctx, "token_secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestSystemKVOverwrite(t *testing.T) {
	db := testDB(t)
	store := NewSystemStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.SetKV(ctx, "cursor", "v1"))
	require.NoError(t, store.SetKV(ctx, "cursor", "v2"))

	got, err := store.GetKV(ctx, "cursor")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestSystemKVNotFound(t *testing.T) {
	db := testDB(t)
	store := NewSystemStore(db, testLogger())
	ctx := context.Background()

	_, err := store.GetKV(ctx, "missing")
	require.Error(t, err)
}
