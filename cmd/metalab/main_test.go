package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
	"solana-metadata-lab/internal/token"
)

func TestDeriveAddresses(t *testing.T) {
	programID := metadata.TokenMetadataProgramID
	mint := solana.MustParsePubkey("So11111111111111111111111111111111111111112")

	out, err := deriveAddresses(programID, mint, nil, nil)
	if err != nil {
		t.Fatalf("deriveAddresses failed: %v", err)
	}
	wantMeta, _ := metadata.MetadataAddress(programID, mint)
	if out.Metadata != wantMeta {
		t.Errorf("metadata = %s, want %s", out.Metadata, wantMeta)
	}
	if out.EditionMarker != nil || out.TokenAccount != nil {
		t.Error("optional addresses derived without being requested")
	}

	edition := uint64(500)
	wallet := solana.MustParsePubkey("11111111111111111111111111111112")
	out, err = deriveAddresses(programID, mint, &edition, &wallet)
	if err != nil {
		t.Fatalf("deriveAddresses failed: %v", err)
	}
	if out.EditionMarker == nil {
		t.Fatal("expected edition marker")
	}
	wantMarker, _ := metadata.EditionMarkerAddress(programID, mint, 500)
	if *out.EditionMarker != wantMarker {
		t.Errorf("marker = %s, want %s", *out.EditionMarker, wantMarker)
	}
	if out.MarkerPage != 2 {
		t.Errorf("marker page = %d, want 2", out.MarkerPage)
	}
	if out.TokenAccount == nil {
		t.Error("expected token account")
	}
}

func TestMetadataFields(t *testing.T) {
	edition := solana.MustParsePubkey("11111111111111111111111111111112")
	m := &metadata.Metadata{
		Key: metadata.KeyMetadataV1,
		Data: metadata.Data{
			Name: "Token",
			Creators: []metadata.Creator{
				{Verified: true, Share: 100},
			},
		},
		Edition: &edition,
	}

	fields := metadataFields(m)
	// eight base fields, the edition and one creator
	if len(fields) != 10 {
		t.Errorf("expected 10 fields, got %d", len(fields))
	}

	m.Data.URI = "ipfs://QmHash/1.json"
	fields = metadataFields(m)
	if len(fields) != 12 {
		t.Fatalf("expected 12 fields with an ipfs uri, got %d", len(fields))
	}
	if fields[8].Key != "ipfs_cid" || fields[8].String != "QmHash/1.json" {
		t.Errorf("unexpected cid field: %+v", fields[8])
	}
	if fields[9].String != "https://ipfs.io/ipfs/QmHash/1.json" {
		t.Errorf("unexpected gateway field: %+v", fields[9])
	}
}

func TestTokenFields(t *testing.T) {
	reserve := uint64(2039280)
	delegate := solana.MustParsePubkey("11111111111111111111111111111112")
	a := &token.Account{Amount: 3, State: token.StateInitialized}

	if got := len(tokenFields(a)); got != 5 {
		t.Errorf("expected 5 fields, got %d", got)
	}

	a.Delegate = &delegate
	a.IsNative = &reserve
	if got := len(tokenFields(a)); got != 8 {
		t.Errorf("expected 8 fields with delegate and reserve, got %d", got)
	}
}

func TestRootCmd_Derive(t *testing.T) {
	logger = zap.NewNop()
	for _, k := range []string{"METALAB_PROGRAM_ID", "METALAB_POSTGRES_DSN", "METALAB_CLICKHOUSE_DSN", "METALAB_RPC_ENDPOINT"} {
		t.Setenv(k, "")
	}

	configFile := filepath.Join(t.TempDir(), "absent.yaml")

	t.Run("valid mint", func(t *testing.T) {
		rootCmd.SetArgs([]string{"derive", "So11111111111111111111111111111111111111112", "--config", configFile})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("derive failed: %v", err)
		}
		if cfg == nil || cfg.Solana.ProgramID != metadata.TokenMetadataProgramID.String() {
			t.Error("expected default config to be loaded")
		}
	})

	t.Run("invalid mint", func(t *testing.T) {
		rootCmd.SetArgs([]string{"derive", "not-a-key", "--config", configFile})
		if err := rootCmd.Execute(); err == nil {
			t.Error("expected error for invalid mint")
		}
	})

	t.Run("flag overrides", func(t *testing.T) {
		rootCmd.SetArgs([]string{"derive", "So11111111111111111111111111111111111111112",
			"--config", configFile, "--rpc-endpoint", "http://localhost:8899"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("derive failed: %v", err)
		}
		if cfg.Solana.RPCEndpoint != "http://localhost:8899" {
			t.Errorf("expected flag override, got %s", cfg.Solana.RPCEndpoint)
		}
	})
}
