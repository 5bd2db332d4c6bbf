package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-metadata-lab/internal/borsh"
	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
)

var programID = metadata.TokenMetadataProgramID

func key(b byte) solana.Pubkey {
	var pk solana.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func account(t *testing.T, addr byte, data []byte) solana.RawAccount {
	t.Helper()
	return solana.RawAccount{Pubkey: key(addr), Owner: programID, Data: data}
}

func metadataBytes(t *testing.T, mint, authority byte, uri string) []byte {
	t.Helper()
	data, err := metadata.EncodeMetadata(&metadata.Metadata{
		Key:             metadata.KeyMetadataV1,
		UpdateAuthority: key(authority),
		Mint:            key(mint),
		Data: metadata.Data{
			Name:   "Token",
			Symbol: "TKN",
			URI:    uri,
		},
		IsMutable: true,
	})
	require.NoError(t, err)
	return data
}

func masterV1Bytes(t *testing.T, printing, oneTime byte) []byte {
	t.Helper()
	data, err := metadata.EncodeMasterEdition(&metadata.MasterEditionV1{
		Key:                              metadata.KeyMasterEditionV1,
		Supply:                           1,
		PrintingMint:                     key(printing),
		OneTimePrintingAuthorizationMint: key(oneTime),
	})
	require.NoError(t, err)
	return data
}

func masterV2Bytes(t *testing.T) []byte {
	t.Helper()
	limit := uint64(5)
	data, err := metadata.EncodeMasterEdition(&metadata.MasterEditionV2{
		Key:       metadata.KeyMasterEditionV2,
		Supply:    2,
		MaxSupply: &limit,
	})
	require.NoError(t, err)
	return data
}

func editionBytes(t *testing.T, parent byte, n uint64) []byte {
	t.Helper()
	data, err := metadata.EncodeEdition(&metadata.Edition{Key: metadata.KeyEditionV1, Parent: key(parent), Edition: n})
	require.NoError(t, err)
	return data
}

func TestClassify_MasterEditionFanOut(t *testing.T) {
	c := New(DefaultConfig())

	rep := c.Classify([]solana.RawAccount{
		account(t, 10, masterV1Bytes(t, 0xAA, 0xBB)),
		account(t, 11, masterV2Bytes(t)),
	})

	b := rep.Buckets
	require.Len(t, b.MasterEditions, 2)
	require.Len(t, b.MasterEditionsByPrintingMint, 1)
	require.Len(t, b.MasterEditionsByOneTimeAuthMint, 1)
	assert.Empty(t, b.MetadataByMint)
	assert.Empty(t, b.Editions)
	assert.Equal(t, 4, b.Len())

	assert.Equal(t, key(10), b.MasterEditions[0].Key)
	assert.Equal(t, key(11), b.MasterEditions[1].Key)
	assert.Equal(t, key(0xAA), b.MasterEditionsByPrintingMint[0].Key)
	assert.Equal(t, key(10), b.MasterEditionsByPrintingMint[0].Pubkey)
	assert.Equal(t, key(0xBB), b.MasterEditionsByOneTimeAuthMint[0].Key)

	_, isV2 := b.MasterEditions[1].Info.(*metadata.MasterEditionV2)
	assert.True(t, isV2)
	assert.Equal(t, 2, rep.Stats.Count(OutcomeClassified))
}

func TestClassify_BucketKeys(t *testing.T) {
	c := New(DefaultConfig())

	rep := c.Classify([]solana.RawAccount{
		account(t, 1, metadataBytes(t, 0x50, 0x60, "https://arweave.net/abc123")),
		account(t, 2, editionBytes(t, 10, 7)),
	})

	require.Len(t, rep.Buckets.MetadataByMint, 1)
	entry := rep.Buckets.MetadataByMint[0]
	assert.Equal(t, key(0x50), entry.Key, "metadata keyed by mint")
	assert.Equal(t, key(1), entry.Pubkey)
	assert.Equal(t, "Token", entry.Info.Data.Name)

	require.Len(t, rep.Buckets.Editions, 1)
	assert.Equal(t, key(2), rep.Buckets.Editions[0].Key, "edition keyed by own address")
	assert.Equal(t, uint64(7), rep.Buckets.Editions[0].Info.Edition)
}

func TestClassify_URIFilter(t *testing.T) {
	tests := []struct {
		uri      string
		accepted bool
	}{
		{"not a url", false},
		{"https://arweave.net/abc123", true},
		{"http://arweave.net/abc123", true},
		{"ftp://arweave.net/x", false},
		{"https://example.com/x", false},
		{"https://example.com/arweave", true},
		{"", false},
	}

	c := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			rep := c.Classify([]solana.RawAccount{account(t, 1, metadataBytes(t, 2, 3, tt.uri))})
			if tt.accepted {
				assert.Len(t, rep.Buckets.MetadataByMint, 1)
				assert.Equal(t, OutcomeClassified, rep.Results[0].Outcome)
			} else {
				assert.Empty(t, rep.Buckets.MetadataByMint)
				assert.Equal(t, OutcomeRejectedURI, rep.Results[0].Outcome)
			}
		})
	}
}

func TestClassify_Discards(t *testing.T) {
	valid := metadataBytes(t, 2, 3, "https://arweave.net/abc123")

	unknown := append([]byte(nil), valid...)
	unknown[0] = 99

	truncated := valid[:40]

	badPresence := append([]byte(nil), valid...)
	badPresence[len(badPresence)-3] = 2

	marker, err := metadata.EncodeEditionMarker(&metadata.EditionMarker{Key: metadata.KeyEditionMarker})
	require.NoError(t, err)

	foreign := account(t, 5, valid)
	foreign.Owner = key(0xEE)

	tests := []struct {
		name string
		acc  solana.RawAccount
		want Outcome
	}{
		{"owner mismatch", foreign, OutcomeOwnerMismatch},
		{"empty", account(t, 1, nil), OutcomeEmpty},
		{"unknown key", account(t, 1, unknown), OutcomeUnknownKey},
		{"truncated", account(t, 1, truncated), OutcomeDecodeError},
		{"bad presence", account(t, 1, badPresence), OutcomeDecodeError},
		{"uninitialized", account(t, 1, []byte{0, 0, 0}), OutcomeUnbucketed},
		{"edition marker", account(t, 1, marker), OutcomeUnbucketed},
		{"truncated marker", account(t, 1, marker[:10]), OutcomeDecodeError},
	}

	c := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, res := c.ClassifyAccount(tt.acc)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Zero(t, b.Len())
			if tt.want == OutcomeDecodeError {
				assert.ErrorIs(t, res.Err, borsh.ErrSchemaMismatch)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestClassify_MalformedDoesNotAbortBatch(t *testing.T) {
	good := metadataBytes(t, 2, 3, "https://arweave.net/a")
	accounts := []solana.RawAccount{
		account(t, 1, good[:20]),
		account(t, 2, []byte{99, 1, 2}),
		account(t, 3, good),
		account(t, 4, editionBytes(t, 9, 1)),
	}

	rep := New(DefaultConfig()).Classify(accounts)

	assert.Len(t, rep.Buckets.MetadataByMint, 1)
	assert.Len(t, rep.Buckets.Editions, 1)
	assert.Equal(t, 4, rep.Stats.Total)
	assert.Equal(t, 2, rep.Stats.Discarded())
	assert.Equal(t, 1, rep.Stats.Count(OutcomeDecodeError))
	assert.Equal(t, 1, rep.Stats.Count(OutcomeUnknownKey))
	require.Len(t, rep.Results, 4)
	assert.Equal(t, key(3), rep.Results[2].Pubkey)
}

func TestClassifyParallel_MatchesSequential(t *testing.T) {
	var accounts []solana.RawAccount
	for i := 0; i < 200; i++ {
		b := byte(i)
		switch i % 5 {
		case 0:
			accounts = append(accounts, account(t, b, metadataBytes(t, b, 1, fmt.Sprintf("https://arweave.net/%d", i))))
		case 1:
			accounts = append(accounts, account(t, b, masterV1Bytes(t, b, b+1)))
		case 2:
			accounts = append(accounts, account(t, b, editionBytes(t, b, uint64(i))))
		case 3:
			accounts = append(accounts, account(t, b, masterV2Bytes(t)))
		case 4:
			accounts = append(accounts, account(t, b, []byte{42}))
		}
	}

	cfg := DefaultConfig()
	cfg.Workers = 8
	c := New(cfg)

	seq := c.Classify(accounts)
	par, err := c.ClassifyParallel(context.Background(), accounts)
	require.NoError(t, err)

	assert.Equal(t, seq.Stats, par.Stats)
	assert.Equal(t, seq.Results, par.Results)
	require.Equal(t, len(seq.Buckets.MetadataByMint), len(par.Buckets.MetadataByMint))
	for i := range seq.Buckets.MetadataByMint {
		assert.Equal(t, seq.Buckets.MetadataByMint[i].Pubkey, par.Buckets.MetadataByMint[i].Pubkey)
	}
	assert.Len(t, par.Buckets.MasterEditions, 80)
	assert.Len(t, par.Buckets.MasterEditionsByPrintingMint, 40)
}

func TestClassifyParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).ClassifyParallel(ctx, []solana.RawAccount{
		account(t, 1, editionBytes(t, 1, 1)),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookupMetadata(t *testing.T) {
	c := New(DefaultConfig())

	m, ok := c.LookupMetadata(account(t, 1, metadataBytes(t, 2, 3, "ipfs://not-filtered")))
	require.True(t, ok, "lookup does not apply the uri filter")
	assert.Equal(t, key(2), m.Mint)

	_, ok = c.LookupMetadata(account(t, 1, editionBytes(t, 1, 1)))
	assert.False(t, ok)

	foreign := account(t, 1, metadataBytes(t, 2, 3, "https://arweave.net/x"))
	foreign.Owner = key(0xEE)
	_, ok = c.LookupMetadata(foreign)
	assert.False(t, ok)
}

func TestBuckets_MetadataByUpdateAuthority(t *testing.T) {
	c := New(DefaultConfig())
	rep := c.Classify([]solana.RawAccount{
		account(t, 1, metadataBytes(t, 10, 0xA1, "https://arweave.net/1")),
		account(t, 2, metadataBytes(t, 11, 0xA2, "https://arweave.net/2")),
		account(t, 3, metadataBytes(t, 12, 0xA1, "https://arweave.net/3")),
	})

	got := rep.Buckets.MetadataByUpdateAuthority(key(0xA1))
	require.Len(t, got, 2)
	assert.Equal(t, key(10), got[0].Key)
	assert.Equal(t, key(12), got[1].Key)

	e, ok := rep.Buckets.MetadataForMint(key(11))
	require.True(t, ok)
	assert.Equal(t, key(2), e.Pubkey)
}

func TestNew_LenientUTF8(t *testing.T) {
	data, err := metadata.EncodeMetadata(&metadata.Metadata{
		Key:  metadata.KeyMetadataV1,
		Data: metadata.Data{Name: "\xff", URI: "https://arweave.net/x"},
	})
	require.NoError(t, err)
	acc := account(t, 1, data)

	_, res := New(DefaultConfig()).ClassifyAccount(acc)
	assert.Equal(t, OutcomeDecodeError, res.Outcome)
	assert.ErrorIs(t, res.Err, borsh.ErrInvalidUTF8)

	cfg := DefaultConfig()
	cfg.LenientUTF8 = true
	_, res = New(cfg).ClassifyAccount(acc)
	assert.Equal(t, OutcomeClassified, res.Outcome)
}
