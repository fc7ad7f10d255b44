package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/store/storetest"
)

func newMemoryStore(t *testing.T, now func() time.Time) store.Backing {
	return New(NewMemoryKV(), WithClock(now))
}

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, newMemoryStore)
}

func TestMemoryStoreSeed(t *testing.T) {
	storetest.RunSeeded(t, newMemoryStore)
}

func TestInitializeKeepsExistingTables(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyStages, []byte(`[{"id":"x","name":"Propia","order":1,"active":true}]`)))

	s := New(kv)
	require.NoError(t, s.Initialize(ctx))

	stages, err := s.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "Propia", stages[0].Name)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestCorruptTable(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyProspects, []byte(`{not json`)))

	s := New(kv)
	_, err := s.ListProspects(ctx, store.ListQuery{})
	assert.Error(t, err)
	_, err = s.CreateProspect(ctx, models.ProspectInput{})
	assert.Error(t, err)
}

func TestTablesAreJSONArrays(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(kv)

	_, err := s.CreateClient(ctx, models.ClientInput{
		ComitenteNumber: strPtr("COM1"),
		Name:            strPtr("Empresa"),
	})
	require.NoError(t, err)

	raw, ok, err := kv.Get(ctx, KeyClients)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"numcomitente":"COM1"`)
	assert.Contains(t, string(raw), `"created_at":`)
	assert.Equal(t, byte('['), raw[0])
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	_, ok, err = kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
