package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/storage"
	"solana-metadata-lab/internal/storage/migrations"
)

func testMetadata(address, mint string, slot int64, creators ...string) *domain.MetadataRecord {
	m := &domain.MetadataRecord{
		Address:              address,
		Mint:                 mint,
		UpdateAuthority:      "Authority1111",
		Name:                 "Test Token",
		Symbol:               "TST",
		URI:                  "https://arweave.net/abc123",
		SellerFeeBasisPoints: 500,
		PrimarySaleHappened:  true,
		IsMutable:            true,
		Slot:                 slot,
		UpdatedAt:            1700000000000,
	}
	for i, c := range creators {
		m.Creators = append(m.Creators, domain.CreatorShare{Address: c, Verified: i == 0, Share: uint8(100 / len(creators))})
	}
	return m
}

func TestRecordStore_UpsertAndGetMetadata(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	m := testMetadata("Meta1", "Mint1", 10, "CreatorA", "CreatorB")
	m.EditionAddress = ptr("Edition1")
	require.NoError(t, store.UpsertMetadata(ctx, m))

	got, err := store.GetMetadataByMint(ctx, "Mint1")
	require.NoError(t, err)

	assert.Equal(t, m.Address, got.Address)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.SellerFeeBasisPoints, got.SellerFeeBasisPoints)
	assert.True(t, got.PrimarySaleHappened)
	require.NotNil(t, got.EditionAddress)
	assert.Equal(t, "Edition1", *got.EditionAddress)
	assert.Equal(t, m.Creators, got.Creators)
}

func TestRecordStore_MetadataCreatorsAbsentVsEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	absent := testMetadata("Meta1", "Mint1", 1)
	empty := testMetadata("Meta2", "Mint2", 1)
	empty.Creators = []domain.CreatorShare{}
	require.NoError(t, store.UpsertMetadata(ctx, absent))
	require.NoError(t, store.UpsertMetadata(ctx, empty))

	got, err := store.GetMetadataByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Nil(t, got.Creators)

	got, err = store.GetMetadataByMint(ctx, "Mint2")
	require.NoError(t, err)
	assert.NotNil(t, got.Creators)
	assert.Empty(t, got.Creators)
}

func TestRecordStore_UpsertMetadataSlotOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	newer := testMetadata("Meta1", "Mint1", 20, "CreatorNew")
	newer.Name = "Newer"
	older := testMetadata("Meta1", "Mint1", 10, "CreatorOld")
	older.Name = "Older"

	require.NoError(t, store.UpsertMetadata(ctx, newer))
	require.NoError(t, store.UpsertMetadata(ctx, older))

	got, err := store.GetMetadataByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Equal(t, "Newer", got.Name)
	require.Len(t, got.Creators, 1)
	assert.Equal(t, "CreatorNew", got.Creators[0].Address)
}

func TestRecordStore_UpsertMetadataMintConflict(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	require.NoError(t, store.UpsertMetadata(ctx, testMetadata("Meta1", "Mint1", 1)))
	err := store.UpsertMetadata(ctx, testMetadata("Meta2", "Mint1", 1))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRecordStore_PaddedStrings(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	m := testMetadata("Meta1", "Mint1", 1)
	m.Name = "a\x00b"
	m.Symbol = "bad\xff"
	require.NoError(t, store.UpsertMetadata(ctx, m))

	got, err := store.GetMetadataByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Equal(t, "ab", got.Name)
	assert.Equal(t, "bad\uFFFD", got.Symbol)
}

func TestRecordStore_ListMetadataByCreator(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	require.NoError(t, store.UpsertMetadata(ctx, testMetadata("MetaC", "Mint3", 1, "CreatorA")))
	require.NoError(t, store.UpsertMetadata(ctx, testMetadata("MetaA", "Mint1", 1, "CreatorB", "CreatorA")))
	require.NoError(t, store.UpsertMetadata(ctx, testMetadata("MetaB", "Mint2", 1, "CreatorB")))

	result, err := store.ListMetadataByCreator(ctx, "CreatorA")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "MetaA", result[0].Address)
	assert.Equal(t, "MetaC", result[1].Address)
	require.Len(t, result[0].Creators, 2)
	assert.Equal(t, "CreatorB", result[0].Creators[0].Address)

	none, err := store.ListMetadataByCreator(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordStore_Editions(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRecordStore(pool)

	_, err := store.GetEdition(ctx, "Edition1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	big := uint64(1<<63 + 5)
	require.NoError(t, store.UpsertEdition(ctx, &domain.EditionRecord{Address: "Edition1", Parent: "Master1", Edition: big, Slot: 3}))

	e, err := store.GetEdition(ctx, "Edition1")
	require.NoError(t, err)
	assert.Equal(t, big, e.Edition, "u64 survives the BIGINT column")
	assert.Equal(t, "Master1", e.Parent)

	v1 := &domain.MasterEditionRecord{
		Address:         "Master1",
		Version:         2,
		Supply:          4,
		MaxSupply:       ptr(uint64(10)),
		PrintingMint:    ptr("Printing1"),
		OneTimeAuthMint: ptr("OneTime1"),
		Slot:            3,
	}
	require.NoError(t, store.UpsertMasterEdition(ctx, v1))

	got, err := store.GetMasterEdition(ctx, "Master1")
	require.NoError(t, err)
	assert.Equal(t, v1, got)

	v2 := &domain.MasterEditionRecord{Address: "Master1", Version: 6, Supply: 5, Slot: 4}
	require.NoError(t, store.UpsertMasterEdition(ctx, v2))

	got, err = store.GetMasterEdition(ctx, "Master1")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), got.Version)
	assert.Nil(t, got.MaxSupply)
	assert.Nil(t, got.PrintingMint)
}

func TestRunPostgresMigrations_Idempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, migrations.RunPostgresMigrations(context.Background(), pool))
}
