package solana

import "testing"

func TestMemcmpFilter_Matches(t *testing.T) {
	data := []byte{4, 1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		filter MemcmpFilter
		want   bool
	}{
		{name: "prefix", filter: MemcmpFilter{Offset: 0, Bytes: []byte{4}}, want: true},
		{name: "middle", filter: MemcmpFilter{Offset: 2, Bytes: []byte{2, 3}}, want: true},
		{name: "suffix", filter: MemcmpFilter{Offset: 4, Bytes: []byte{4, 5}}, want: true},
		{name: "mismatch", filter: MemcmpFilter{Offset: 1, Bytes: []byte{9}}, want: false},
		{name: "runs past end", filter: MemcmpFilter{Offset: 5, Bytes: []byte{5, 6}}, want: false},
		{name: "negative offset", filter: MemcmpFilter{Offset: -1, Bytes: []byte{4}}, want: false},
		{name: "empty literal", filter: MemcmpFilter{Offset: 6, Bytes: nil}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(data); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesAll(t *testing.T) {
	data := []byte{1, 2, 3}
	filters := []MemcmpFilter{{Offset: 0, Bytes: []byte{1}}, {Offset: 2, Bytes: []byte{3}}}

	if !MatchesAll(data, filters) {
		t.Error("expected all filters to match")
	}
	if MatchesAll(data, append(filters, MemcmpFilter{Offset: 1, Bytes: []byte{9}})) {
		t.Error("expected failure when one filter mismatches")
	}
	if !MatchesAll(data, nil) {
		t.Error("no filters should match everything")
	}
}
