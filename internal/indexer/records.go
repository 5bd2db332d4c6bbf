package indexer

import (
	"solana-metadata-lab/internal/classify"
	"solana-metadata-lab/internal/domain"
	"solana-metadata-lab/internal/metadata"
)

// metadataRecord converts a filed metadata entry. Creators stay nil when the
// account has none, and empty when it carries an empty list.
func metadataRecord(e classify.Entry[*metadata.Metadata], updatedAt int64) *domain.MetadataRecord {
	m := e.Info
	rec := &domain.MetadataRecord{
		Address:              e.Pubkey.String(),
		Mint:                 m.Mint.String(),
		UpdateAuthority:      m.UpdateAuthority.String(),
		Name:                 m.Data.Name,
		Symbol:               m.Data.Symbol,
		URI:                  m.Data.URI,
		SellerFeeBasisPoints: m.Data.SellerFeeBasisPoints,
		PrimarySaleHappened:  m.PrimarySaleHappened,
		IsMutable:            m.IsMutable,
		Slot:                 e.Account.Slot,
		UpdatedAt:            updatedAt,
	}
	if m.Edition != nil {
		addr := m.Edition.String()
		rec.EditionAddress = &addr
	}
	if m.Data.Creators != nil {
		rec.Creators = make([]domain.CreatorShare, 0, len(m.Data.Creators))
		for _, c := range m.Data.Creators {
			rec.Creators = append(rec.Creators, domain.CreatorShare{
				Address:  c.Address.String(),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	return rec
}

func editionRecord(e classify.Entry[*metadata.Edition], updatedAt int64) *domain.EditionRecord {
	return &domain.EditionRecord{
		Address:   e.Pubkey.String(),
		Parent:    e.Info.Parent.String(),
		Edition:   e.Info.Edition,
		Slot:      e.Account.Slot,
		UpdatedAt: updatedAt,
	}
}

func masterEditionRecord(e classify.Entry[metadata.MasterEdition], updatedAt int64) *domain.MasterEditionRecord {
	rec := &domain.MasterEditionRecord{
		Address:   e.Pubkey.String(),
		Version:   uint8(e.Info.Version()),
		Supply:    e.Info.CurrentSupply(),
		Slot:      e.Account.Slot,
		UpdatedAt: updatedAt,
	}
	if limit := e.Info.SupplyLimit(); limit != nil {
		v := *limit
		rec.MaxSupply = &v
	}
	if v1, ok := e.Info.(*metadata.MasterEditionV1); ok {
		printing := v1.PrintingMint.String()
		oneTime := v1.OneTimePrintingAuthorizationMint.String()
		rec.PrintingMint = &printing
		rec.OneTimeAuthMint = &oneTime
	}
	return rec
}
