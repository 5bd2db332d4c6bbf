package classify

import (
	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
)

// Entry is one filed record. Key is the bucket key (mint, printing mint,
// or the account's own address depending on the bucket); Pubkey is always
// the account address.
type Entry[T any] struct {
	Key     solana.Pubkey
	Pubkey  solana.Pubkey
	Account solana.RawAccount
	Info    T
}

// Buckets holds the output of one classification run. Each slice keeps
// input order. A master edition V1 record appears in three buckets.
type Buckets struct {
	MetadataByMint                  []Entry[*metadata.Metadata]
	Editions                        []Entry[*metadata.Edition]
	MasterEditions                  []Entry[metadata.MasterEdition]
	MasterEditionsByPrintingMint    []Entry[*metadata.MasterEditionV1]
	MasterEditionsByOneTimeAuthMint []Entry[*metadata.MasterEditionV1]
}

// MetadataByUpdateAuthority returns the metadata entries whose update
// authority is authority, in bucket order.
func (b *Buckets) MetadataByUpdateAuthority(authority solana.Pubkey) []Entry[*metadata.Metadata] {
	var out []Entry[*metadata.Metadata]
	for _, e := range b.MetadataByMint {
		if e.Info.UpdateAuthority == authority {
			out = append(out, e)
		}
	}
	return out
}

// MetadataForMint returns the first metadata entry keyed by mint.
func (b *Buckets) MetadataForMint(mint solana.Pubkey) (Entry[*metadata.Metadata], bool) {
	for _, e := range b.MetadataByMint {
		if e.Key == mint {
			return e, true
		}
	}
	return Entry[*metadata.Metadata]{}, false
}

// Len returns the total number of entries across all buckets.
func (b *Buckets) Len() int {
	return len(b.MetadataByMint) + len(b.Editions) + len(b.MasterEditions) +
		len(b.MasterEditionsByPrintingMint) + len(b.MasterEditionsByOneTimeAuthMint)
}

// record is the decoded form of one account before filing.
type record struct {
	metadata *metadata.Metadata
	edition  *metadata.Edition
	master   metadata.MasterEdition
}

func (b *Buckets) file(acc solana.RawAccount, r record) {
	switch {
	case r.metadata != nil:
		b.MetadataByMint = append(b.MetadataByMint, Entry[*metadata.Metadata]{
			Key: r.metadata.Mint, Pubkey: acc.Pubkey, Account: acc, Info: r.metadata,
		})
	case r.edition != nil:
		b.Editions = append(b.Editions, Entry[*metadata.Edition]{
			Key: acc.Pubkey, Pubkey: acc.Pubkey, Account: acc, Info: r.edition,
		})
	case r.master != nil:
		b.MasterEditions = append(b.MasterEditions, Entry[metadata.MasterEdition]{
			Key: acc.Pubkey, Pubkey: acc.Pubkey, Account: acc, Info: r.master,
		})
		if v1, ok := r.master.(*metadata.MasterEditionV1); ok {
			b.MasterEditionsByPrintingMint = append(b.MasterEditionsByPrintingMint, Entry[*metadata.MasterEditionV1]{
				Key: v1.PrintingMint, Pubkey: acc.Pubkey, Account: acc, Info: v1,
			})
			b.MasterEditionsByOneTimeAuthMint = append(b.MasterEditionsByOneTimeAuthMint, Entry[*metadata.MasterEditionV1]{
				Key: v1.OneTimePrintingAuthorizationMint, Pubkey: acc.Pubkey, Account: acc, Info: v1,
			})
		}
	}
}
