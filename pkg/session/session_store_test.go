package session

import (
	"testing"
	"time"

	"purchases-api/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func snapshot() []domain.Purchase {
	return []domain.Purchase{{
		ID:          1,
		UserID:      42,
		Category:    "food",
		Subcategory: "bread",
		Price:       decimal.NewFromInt(10),
		Timestamp:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemoryStore(time.Minute, c.Now)

	sess := store.Create(42, snapshot())
	assert.NotEqual(t, uuid.Nil, sess.ID)
	assert.Equal(t, c.now.Add(time.Minute), sess.ExpiresAt)

	got, err := store.Get(sess.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.OwnerID)
	require.Len(t, got.Original, 1)
}

func TestSessionStore_SnapshotIsCopied(t *testing.T) {
	store := NewSessionStore(time.Minute)
	src := snapshot()

	sess := store.Create(42, src)
	src[0].Category = "changed"
	sess.Original[0].Subcategory = "changed"

	got, err := store.Get(sess.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, "food", got.Original[0].Category)
	assert.Equal(t, "bread", got.Original[0].Subcategory)
}

func TestSessionStore_OwnerMismatch(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := store.Create(42, nil)

	_, err := store.Get(sess.ID, 43)
	assert.ErrorIs(t, err, domain.ErrSessionForbidden)

	_, err = store.Replace(sess.ID, 43, snapshot())
	assert.ErrorIs(t, err, domain.ErrSessionForbidden)

	assert.ErrorIs(t, store.Delete(sess.ID, 43), domain.ErrSessionForbidden)

	_, err = store.Get(sess.ID, 42)
	assert.NoError(t, err, "failed foreign access must not tear the session down")
}

func TestSessionStore_ExpiryAndSliding(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemoryStore(10*time.Minute, c.Now)
	sess := store.Create(42, nil)

	c.now = c.now.Add(9 * time.Minute)
	_, err := store.Get(sess.ID, 42)
	require.NoError(t, err)

	// access slid the expiry forward
	c.now = c.now.Add(9 * time.Minute)
	_, err = store.Get(sess.ID, 42)
	require.NoError(t, err)

	c.now = c.now.Add(10 * time.Minute)
	_, err = store.Get(sess.ID, 42)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_CreateSweepsExpired(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemoryStore(time.Minute, c.Now)
	store.Create(42, nil)

	c.now = c.now.Add(2 * time.Minute)
	store.Create(43, nil)

	assert.Len(t, store.sessions, 1)
}

func TestSessionStore_ReplaceAndDelete(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := store.Create(42, nil)

	replaced, err := store.Replace(sess.ID, 42, snapshot())
	require.NoError(t, err)
	assert.Len(t, replaced.Original, 1)

	require.NoError(t, store.Delete(sess.ID, 42))
	_, err = store.Get(sess.ID, 42)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(sess.ID, 42), domain.ErrSessionNotFound)
}
