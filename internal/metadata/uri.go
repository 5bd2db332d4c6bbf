package metadata

import "regexp"

// IPFSGateway is the public gateway GatewayURL rewrites ipfs:// uris to.
const IPFSGateway = "https://ipfs.io"

// notLineEnd matches any rune except the line terminators.
const notLineEnd = `[^\n\r\x{2028}\x{2029}]`

var (
	ipfsScheme  = regexp.MustCompile(`^(ipfs://)` + notLineEnd)
	gatewayPath = regexp.MustCompile(`^(https://` + notLineEnd + `*/ipfs/)` + notLineEnd)
)

// IPFSCID returns what follows "ipfs://" in uri. The remainder must start
// on the same line.
func IPFSCID(uri string) (string, bool) {
	m := ipfsScheme.FindStringSubmatchIndex(uri)
	if m == nil {
		return "", false
	}
	return uri[m[3]:], true
}

// GatewayURL rewrites an ipfs:// uri to IPFSGateway. Other uris are
// returned unchanged.
func GatewayURL(uri string) string {
	if cid, ok := IPFSCID(uri); ok {
		return IPFSGateway + "/ipfs/" + cid
	}
	return uri
}

// ContentID extracts an IPFS content id from an ipfs:// uri or from an
// https gateway uri, taking what follows the last "/ipfs/" on the first
// line.
func ContentID(uri string) (string, bool) {
	if cid, ok := IPFSCID(uri); ok {
		return cid, true
	}
	m := gatewayPath.FindStringSubmatchIndex(uri)
	if m == nil {
		return "", false
	}
	return uri[m[3]:], true
}
