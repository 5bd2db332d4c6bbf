// Package metadata decodes and encodes token-metadata program accounts:
// metadata, editions, master editions (V1 and V2) and edition markers.
//
// Decoders are pure. They take the full account buffer, discriminant byte
// included, and return a typed record or an error wrapping
// borsh.ErrSchemaMismatch. Edition and master-edition addresses of a
// Metadata record are not stored on chain; DeriveEditions computes them on
// demand.
package metadata
