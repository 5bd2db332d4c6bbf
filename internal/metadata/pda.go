package metadata

import (
	"strconv"

	"solana-metadata-lab/internal/solana"
)

// Well-known program identifiers.
var (
	TokenMetadataProgramID   = solana.MustParsePubkey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	TokenProgramID           = solana.MustParsePubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = solana.MustParsePubkey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID          = solana.MustParsePubkey("11111111111111111111111111111111")
)

const (
	metadataSeed = "metadata"
	editionSeed  = "edition"
)

// MetadataAddress derives the metadata account of mint.
// Seeds: ["metadata", program, mint].
func MetadataAddress(programID, mint solana.Pubkey) (solana.Pubkey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(metadataSeed),
		programID.Bytes(),
		mint.Bytes(),
	}, programID)
	return addr, err
}

// EditionAddress derives the edition account of mint. The same address holds
// the master edition of a master mint and the edition of a printed mint.
// Seeds: ["metadata", program, mint, "edition"].
func EditionAddress(programID, mint solana.Pubkey) (solana.Pubkey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(metadataSeed),
		programID.Bytes(),
		mint.Bytes(),
		[]byte(editionSeed),
	}, programID)
	return addr, err
}

// EditionMarkerAddress derives the marker account covering edition.
// Seeds: ["metadata", program, mint, "edition", decimal(edition/248)].
func EditionMarkerAddress(programID, mint solana.Pubkey, edition uint64) (solana.Pubkey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(metadataSeed),
		programID.Bytes(),
		mint.Bytes(),
		[]byte(editionSeed),
		[]byte(strconv.FormatUint(MarkerPage(edition), 10)),
	}, programID)
	return addr, err
}

// DeriveEditions fills m.Edition and m.MasterEdition from m.Mint. Once both
// are set, further calls do nothing.
func (m *Metadata) DeriveEditions(programID solana.Pubkey) error {
	if m.Edition != nil && m.MasterEdition != nil {
		return nil
	}
	addr, err := EditionAddress(programID, m.Mint)
	if err != nil {
		return err
	}
	edition, master := addr, addr
	m.Edition = &edition
	m.MasterEdition = &master
	return nil
}

// AssociatedTokenAddress derives the associated token account of wallet
// for mint.
func AssociatedTokenAddress(wallet, mint solana.Pubkey) (solana.Pubkey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		wallet.Bytes(),
		TokenProgramID.Bytes(),
		mint.Bytes(),
	}, AssociatedTokenProgramID)
	return addr, err
}
