package metadata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"solana-metadata-lab/internal/borsh"
	"solana-metadata-lab/internal/solana"
)

func testKey(b byte) solana.Pubkey {
	var pk solana.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func u64p(v uint64) *uint64 { return &v }

func sampleMetadata() *Metadata {
	return &Metadata{
		Key:             KeyMetadataV1,
		UpdateAuthority: testKey(1),
		Mint:            testKey(2),
		Data: Data{
			Name:                 "Degen Ape #1",
			Symbol:               "DAPE",
			URI:                  "https://arweave.net/abc123",
			SellerFeeBasisPoints: 420,
			Creators: []Creator{
				{Address: testKey(3), Verified: true, Share: 60},
				{Address: testKey(4), Verified: false, Share: 40},
			},
		},
		PrimarySaleHappened: true,
		IsMutable:           false,
	}
}

func TestMetadata_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		creators []Creator
	}{
		{"creators present", sampleMetadata().Data.Creators},
		{"creators empty", []Creator{}},
		{"creators absent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := sampleMetadata()
			want.Data.Creators = tt.creators

			data, err := EncodeMetadata(want)
			if err != nil {
				t.Fatalf("EncodeMetadata: %v", err)
			}
			got, err := DecodeMetadata(data)
			if err != nil {
				t.Fatalf("DecodeMetadata: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEditionRecords_RoundTrip(t *testing.T) {
	t.Run("edition", func(t *testing.T) {
		want := &Edition{Key: KeyEditionV1, Parent: testKey(9), Edition: 17}
		data, err := EncodeEdition(want)
		if err != nil {
			t.Fatal(err)
		}
		got, err := DecodeEdition(data)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	masters := []struct {
		name string
		in   MasterEdition
	}{
		{"v1 capped", &MasterEditionV1{Key: KeyMasterEditionV1, Supply: 3, MaxSupply: u64p(10), PrintingMint: testKey(5), OneTimePrintingAuthorizationMint: testKey(6)}},
		{"v1 unlimited", &MasterEditionV1{Key: KeyMasterEditionV1, Supply: 3, PrintingMint: testKey(5), OneTimePrintingAuthorizationMint: testKey(6)}},
		{"v2 capped", &MasterEditionV2{Key: KeyMasterEditionV2, Supply: 0, MaxSupply: u64p(0)}},
		{"v2 unlimited", &MasterEditionV2{Key: KeyMasterEditionV2, Supply: 99}},
	}
	for _, tt := range masters {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeMasterEdition(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got, err := DecodeMasterEdition(data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("edition marker", func(t *testing.T) {
		want := &EditionMarker{Key: KeyEditionMarker}
		want.Ledger[0] = 0x80
		want.Ledger[30] = 0x01
		data, err := EncodeEditionMarker(want)
		if err != nil {
			t.Fatal(err)
		}
		if len(data) != 1+EditionMarkerLedgerLen {
			t.Errorf("encoded length = %d, want 32", len(data))
		}
		got, err := DecodeEditionMarker(data)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDecodeMasterEdition_Dispatch(t *testing.T) {
	v1, err := EncodeMasterEdition(&MasterEditionV1{Key: KeyMasterEditionV1, PrintingMint: testKey(1), OneTimePrintingAuthorizationMint: testKey(2)})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := EncodeMasterEdition(&MasterEditionV2{Key: KeyMasterEditionV2})
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeMasterEdition(v1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*MasterEditionV1); !ok {
		t.Errorf("key 2 decoded as %T", got)
	}

	got, err = DecodeMasterEdition(v2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*MasterEditionV2); !ok {
		t.Errorf("key 6 decoded as %T", got)
	}

	foreign := make([]byte, Schemas.MinSize(schemaMasterEditionV2))
	foreign[0] = byte(KeyMetadataV1)
	_, err = DecodeMasterEdition(foreign)
	if !errors.Is(err, ErrUnknownKey) || !errors.Is(err, borsh.ErrSchemaMismatch) {
		t.Errorf("metadata key: err = %v", err)
	}
}

func TestDecoders_ShortBuffer(t *testing.T) {
	meta, _ := EncodeMetadata(sampleMetadata())
	edition, _ := EncodeEdition(&Edition{Key: KeyEditionV1, Parent: testKey(1), Edition: 1})
	v1, _ := EncodeMasterEdition(&MasterEditionV1{Key: KeyMasterEditionV1, MaxSupply: u64p(1)})
	v2, _ := EncodeMasterEdition(&MasterEditionV2{Key: KeyMasterEditionV2, MaxSupply: u64p(1)})
	marker, _ := EncodeEditionMarker(&EditionMarker{Key: KeyEditionMarker})

	tests := []struct {
		name   string
		data   []byte
		decode func([]byte) error
	}{
		{"metadata", meta, func(b []byte) error { _, err := DecodeMetadata(b); return err }},
		{"edition", edition, func(b []byte) error { _, err := DecodeEdition(b); return err }},
		{"master edition v1", v1, func(b []byte) error { _, err := DecodeMasterEdition(b); return err }},
		{"master edition v2", v2, func(b []byte) error { _, err := DecodeMasterEdition(b); return err }},
		{"edition marker", marker, func(b []byte) error { _, err := DecodeEditionMarker(b); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for n := 0; n < len(tt.data); n++ {
				err := tt.decode(tt.data[:n])
				if !errors.Is(err, borsh.ErrUnexpectedEndOfBuffer) {
					t.Fatalf("prefix %d: err = %v, want ErrUnexpectedEndOfBuffer", n, err)
				}
				if !errors.Is(err, borsh.ErrSchemaMismatch) {
					t.Fatalf("prefix %d: err = %v, want ErrSchemaMismatch", n, err)
				}
			}
			if err := tt.decode(tt.data); err != nil {
				t.Errorf("full buffer: %v", err)
			}
		})
	}
}

func TestDecoders_ShortBufferForeignKey(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		decode func([]byte) error
	}{
		{"edition with master edition key", []byte{byte(KeyMasterEditionV1)}, func(b []byte) error { _, err := DecodeEdition(b); return err }},
		{"metadata with marker key", []byte{byte(KeyEditionMarker), 0}, func(b []byte) error { _, err := DecodeMetadata(b); return err }},
		{"master edition with unknown key", []byte{0x63}, func(b []byte) error { _, err := DecodeMasterEdition(b); return err }},
		{"marker with edition key", []byte{byte(KeyEditionV1)}, func(b []byte) error { _, err := DecodeEditionMarker(b); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.data)
			if !errors.Is(err, borsh.ErrUnexpectedEndOfBuffer) {
				t.Errorf("err = %v, want ErrUnexpectedEndOfBuffer", err)
			}
			if !errors.Is(err, borsh.ErrSchemaMismatch) {
				t.Errorf("err = %v, want ErrSchemaMismatch", err)
			}
		})
	}
}

func TestDecodeMasterEdition_UnknownKeyFullLength(t *testing.T) {
	data := make([]byte, Schemas.MinSize(schemaMasterEditionV2))
	data[0] = byte(KeyMetadataV1)
	_, err := DecodeMasterEdition(data)
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("err = %v, want ErrUnknownKey", err)
	}
	if errors.Is(err, borsh.ErrUnexpectedEndOfBuffer) {
		t.Errorf("err = %v, must not report a short buffer", err)
	}
}

func TestDecodeMetadata_InvalidPresence(t *testing.T) {
	m := sampleMetadata()
	m.Data.Creators = nil
	data, err := EncodeMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	// creators presence byte sits right before primarySaleHappened and isMutable
	data[len(data)-3] = 2

	_, err = DecodeMetadata(data)
	if !errors.Is(err, borsh.ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestDecodeMetadata_WrongKey(t *testing.T) {
	data, err := EncodeEdition(&Edition{Key: KeyEditionV1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeMetadata(data); !errors.Is(err, borsh.ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestDecodeMetadata_StripsPadding(t *testing.T) {
	m := sampleMetadata()
	m.Data = PadData(m.Data)
	data, err := EncodeMetadata(m)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeMetadata(data)
	if err != nil {
		t.Fatal(err)
	}
	want := sampleMetadata().Data
	if got.Data.Name != want.Name || got.Data.Symbol != want.Symbol || got.Data.URI != want.URI {
		t.Errorf("padding not stripped: %q %q %q", got.Data.Name, got.Data.Symbol, got.Data.URI)
	}
	if StripPadding(got.Data.Name) != got.Data.Name {
		t.Error("stripping is not idempotent")
	}
}

func TestStripPadding(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc\x00\x00\x00", "abc"},
		{"abc", "abc"},
		{"\x00\x00", ""},
		{"", ""},
		{"a\x00b\x00", "a\x00b"},
	}
	for _, tt := range tests {
		once := StripPadding(tt.in)
		if once != tt.want {
			t.Errorf("StripPadding(%q) = %q, want %q", tt.in, once, tt.want)
		}
		if twice := StripPadding(once); twice != once {
			t.Errorf("StripPadding not idempotent for %q", tt.in)
		}
	}
}

func TestDecodeMetadata_UTF8(t *testing.T) {
	m := sampleMetadata()
	m.Data.Name = "bad\xff"
	data, err := EncodeMetadata(m)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeMetadata(data); !errors.Is(err, borsh.ErrInvalidUTF8) {
		t.Errorf("strict: err = %v, want ErrInvalidUTF8", err)
	}

	got, err := DecodeMetadata(data, LenientUTF8())
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if got.Data.Name != "bad\xff" {
		t.Errorf("lenient name = %q", got.Data.Name)
	}
}

func TestDecodeMetadata_CapacityPaddedAccount(t *testing.T) {
	m := sampleMetadata()
	m.Data = PadData(m.Data)
	data, err := EncodeMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	account := make([]byte, MaxMetadataLen)
	copy(account, data)

	creator := m.Data.Creators[1].Address
	if got := solana.Pubkey(account[CreatorOffset(1) : CreatorOffset(1)+32]); got != creator {
		t.Errorf("creator 1 not at offset %d", CreatorOffset(1))
	}
	filters := CreatorFilters(creator)
	if filters[0].Matches(account) {
		t.Error("slot 0 filter matched creator from slot 1")
	}
	if !filters[1].Matches(account) {
		t.Error("slot 1 filter did not match")
	}

	got, err := DecodeMetadata(account)
	if err != nil {
		t.Fatalf("trailing account bytes must be ignored: %v", err)
	}
	if got.Data.Name != "Degen Ape #1" {
		t.Errorf("Name = %q", got.Data.Name)
	}
}

func TestReadKey(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Key
		wantErr error
	}{
		{"metadata", []byte{4, 1}, KeyMetadataV1, nil},
		{"uninitialized", []byte{0}, KeyUninitialized, nil},
		{"marker", []byte{7}, KeyEditionMarker, nil},
		{"unknown", []byte{99}, Key(99), ErrUnknownKey},
		{"gap value", []byte{3}, Key(3), ErrUnknownKey},
		{"empty", nil, 0, borsh.ErrUnexpectedEndOfBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadKey(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("key = %v, want %v", got, tt.want)
			}
		})
	}
}
