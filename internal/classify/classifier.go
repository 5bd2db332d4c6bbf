// Package classify sorts raw program accounts into typed buckets.
//
// Each account goes through owner check, discriminant read, decode and,
// for metadata, the uri filter. Every step that rejects an account yields a
// typed Outcome; nothing in a batch aborts the rest of the batch.
package classify

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
)

// Config configures a Classifier.
type Config struct {
	ProgramID   solana.Pubkey
	URIFilter   URIFilter // nil means SubstringFilter(DefaultURIMarker)
	LenientUTF8 bool
	Workers     int // ClassifyParallel concurrency; 0 means GOMAXPROCS
}

// DefaultConfig returns the settings used against the token-metadata program.
func DefaultConfig() Config {
	return Config{
		ProgramID: metadata.TokenMetadataProgramID,
		URIFilter: SubstringFilter(DefaultURIMarker),
	}
}

// Classifier is safe for concurrent use; it holds no mutable state.
type Classifier struct {
	programID  solana.Pubkey
	accept     URIFilter
	decodeOpts []metadata.DecodeOption
	workers    int
}

// New builds a Classifier from cfg.
func New(cfg Config) *Classifier {
	c := &Classifier{
		programID: cfg.ProgramID,
		accept:    cfg.URIFilter,
		workers:   cfg.Workers,
	}
	if c.accept == nil {
		c.accept = SubstringFilter(DefaultURIMarker)
	}
	if cfg.LenientUTF8 {
		c.decodeOpts = append(c.decodeOpts, metadata.LenientUTF8())
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// ProgramID returns the owner accounts must match.
func (c *Classifier) ProgramID() solana.Pubkey {
	return c.programID
}

// Report is the output of one classification run. Results is parallel to
// the input slice.
type Report struct {
	Buckets Buckets
	Results []Result
	Stats   Stats
}

// Classify processes accounts sequentially.
func (c *Classifier) Classify(accounts []solana.RawAccount) *Report {
	rep := &Report{Results: make([]Result, len(accounts))}
	for i, acc := range accounts {
		rec, res := c.classifyOne(acc)
		rep.record(acc, rec, res, i)
	}
	return rep
}

// ClassifyParallel decodes accounts on up to Workers goroutines and files
// them in input order, so its report equals Classify's for the same input.
// It returns ctx's error if ctx is cancelled before all accounts are
// decoded.
func (c *Classifier) ClassifyParallel(ctx context.Context, accounts []solana.RawAccount) (*Report, error) {
	recs := make([]record, len(accounts))
	results := make([]Result, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range accounts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs[i], results[i] = c.classifyOne(accounts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{Results: make([]Result, len(accounts))}
	for i, acc := range accounts {
		rep.record(acc, recs[i], results[i], i)
	}
	return rep, nil
}

// ClassifyAccount classifies a single account into a fresh Buckets.
func (c *Classifier) ClassifyAccount(acc solana.RawAccount) (*Buckets, Result) {
	rec, res := c.classifyOne(acc)
	b := &Buckets{}
	if res.Outcome == OutcomeClassified {
		b.file(acc, rec)
	}
	return b, res
}

// LookupMetadata decodes acc as a metadata record without applying the uri
// filter. It reports false when acc is not program-owned metadata or fails
// to decode.
func (c *Classifier) LookupMetadata(acc solana.RawAccount) (*metadata.Metadata, bool) {
	if acc.Owner != c.programID {
		return nil, false
	}
	key, err := metadata.ReadKey(acc.Data)
	if err != nil || key != metadata.KeyMetadataV1 {
		return nil, false
	}
	m, err := metadata.DecodeMetadata(acc.Data, c.decodeOpts...)
	if err != nil {
		return nil, false
	}
	return m, true
}

func (r *Report) record(acc solana.RawAccount, rec record, res Result, i int) {
	r.Results[i] = res
	r.Stats.add(res.Outcome)
	if res.Outcome == OutcomeClassified {
		r.Buckets.file(acc, rec)
	}
}

func (c *Classifier) classifyOne(acc solana.RawAccount) (record, Result) {
	res := Result{Pubkey: acc.Pubkey}

	if acc.Owner != c.programID {
		res.Outcome = OutcomeOwnerMismatch
		return record{}, res
	}
	if len(acc.Data) == 0 {
		res.Outcome = OutcomeEmpty
		return record{}, res
	}

	key, err := metadata.ReadKey(acc.Data)
	res.Key = key
	if errors.Is(err, metadata.ErrUnknownKey) {
		res.Outcome = OutcomeUnknownKey
		return record{}, res
	}

	var rec record
	switch key {
	case metadata.KeyMetadataV1:
		rec.metadata, err = metadata.DecodeMetadata(acc.Data, c.decodeOpts...)
	case metadata.KeyEditionV1:
		rec.edition, err = metadata.DecodeEdition(acc.Data)
	case metadata.KeyMasterEditionV1, metadata.KeyMasterEditionV2:
		rec.master, err = metadata.DecodeMasterEdition(acc.Data)
	case metadata.KeyEditionMarker:
		_, err = metadata.DecodeEditionMarker(acc.Data)
		if err == nil {
			res.Outcome = OutcomeUnbucketed
			return record{}, res
		}
	case metadata.KeyUninitialized:
		res.Outcome = OutcomeUnbucketed
		return record{}, res
	}
	if err != nil {
		res.Outcome = OutcomeDecodeError
		res.Err = err
		return record{}, res
	}

	if rec.metadata != nil && !c.accept(rec.metadata.Data.URI) {
		res.Outcome = OutcomeRejectedURI
		return record{}, res
	}

	res.Outcome = OutcomeClassified
	return rec, res
}
