package classify

import (
	"fmt"

	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
)

// Outcome is the terminal state of one account in a classification run.
type Outcome int

const (
	// OutcomeClassified means the record was filed into at least one bucket.
	OutcomeClassified Outcome = iota
	// OutcomeOwnerMismatch means the account belongs to another program.
	OutcomeOwnerMismatch
	// OutcomeEmpty means the account holds no data.
	OutcomeEmpty
	// OutcomeUnknownKey means the discriminant is not a known record kind.
	OutcomeUnknownKey
	// OutcomeUnbucketed means the record decoded but has no bucket
	// (uninitialized accounts and edition markers).
	OutcomeUnbucketed
	// OutcomeDecodeError means the record failed to decode.
	OutcomeDecodeError
	// OutcomeRejectedURI means a metadata record failed the uri filter.
	OutcomeRejectedURI

	outcomeCount
)

var outcomeNames = [outcomeCount]string{
	OutcomeClassified:    "classified",
	OutcomeOwnerMismatch: "owner_mismatch",
	OutcomeEmpty:         "empty",
	OutcomeUnknownKey:    "unknown_key",
	OutcomeUnbucketed:    "unbucketed",
	OutcomeDecodeError:   "decode_error",
	OutcomeRejectedURI:   "rejected_uri",
}

func (o Outcome) String() string {
	if o >= 0 && o < outcomeCount {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Outcomes lists every outcome in declaration order.
func Outcomes() []Outcome {
	out := make([]Outcome, 0, outcomeCount)
	for o := Outcome(0); o < outcomeCount; o++ {
		out = append(out, o)
	}
	return out
}

// Result records what happened to one input account.
type Result struct {
	Pubkey  solana.Pubkey
	Key     metadata.Key // zero unless the discriminant was read
	Outcome Outcome
	Err     error // set for OutcomeDecodeError
}

// Stats counts results per outcome.
type Stats struct {
	Total  int
	counts [outcomeCount]int
}

func (s *Stats) add(o Outcome) {
	s.Total++
	if o >= 0 && o < outcomeCount {
		s.counts[o]++
	}
}

// Count returns the number of accounts that ended in o.
func (s Stats) Count(o Outcome) int {
	if o < 0 || o >= outcomeCount {
		return 0
	}
	return s.counts[o]
}

// Discarded returns the number of accounts not filed into any bucket.
func (s Stats) Discarded() int {
	return s.Total - s.counts[OutcomeClassified]
}
