package metadata

import "testing"

func TestIPFSCID(t *testing.T) {
	tests := []struct {
		uri    string
		want   string
		wantOK bool
	}{
		{"ipfs://QmHash/0.json", "QmHash/0.json", true},
		{"ipfs://", "", false},
		{"ipfs://\nQm", "", false},
		{"IPFS://QmHash", "", false},
		{"https://ipfs.io/ipfs/QmHash", "", false},
		{" ipfs://QmHash", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, ok := IPFSCID(tt.uri)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IPFSCID(%q) = %q, %v, want %q, %v", tt.uri, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGatewayURL(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"ipfs://QmHash/0.json", "https://ipfs.io/ipfs/QmHash/0.json"},
		{"https://arweave.net/abc", "https://arweave.net/abc"},
		{"ipfs://", "ipfs://"},
	}
	for _, tt := range tests {
		if got := GatewayURL(tt.uri); got != tt.want {
			t.Errorf("GatewayURL(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestContentID(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		want   string
		wantOK bool
	}{
		{"ipfs scheme", "ipfs://QmHash", "QmHash", true},
		{"gateway", "https://ipfs.io/ipfs/QmHash/1.json", "QmHash/1.json", true},
		{"last ipfs segment wins", "https://gw.example/ipfs/a/ipfs/QmHash", "QmHash", true},
		{"trailing ipfs segment backs off", "https://gw.example/ipfs/QmHash/ipfs/", "QmHash/ipfs/", true},
		{"empty host", "https:///ipfs/QmHash", "QmHash", true},
		{"nothing after ipfs", "https://ipfs.io/ipfs/", "", false},
		{"http gateway", "http://ipfs.io/ipfs/QmHash", "", false},
		{"no ipfs path", "https://arweave.net/abc", "", false},
		{"segment on second line", "https://x.example/\n/ipfs/QmHash", "", false},
		{"remainder spans lines", "https://ipfs.io/ipfs/Qm\nrest", "Qm\nrest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ContentID(tt.uri)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ContentID(%q) = %q, %v, want %q, %v", tt.uri, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
