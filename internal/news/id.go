package news

import (
	"crypto/md5" //nolint:gosec // identifiers, not security
	"strings"

	"github.com/google/uuid"
)

// ComputeID derives the stable entry id for title: the MD5 digest of the
// title laid out as a UUID URN. Equal titles always share an id.
func ComputeID(title string) string {
	sum := md5.Sum([]byte(title)) //nolint:gosec // identifiers, not security
	id, _ := uuid.FromBytes(sum[:])
	return id.URN()
}

// NewsLink returns base with a fragment anchor derived from title. Every
// byte of the lower-cased title outside [a-z0-9] becomes '-', the first
// byte included, so a multi-byte character yields one '-' per byte.
// Published links depend on this exact shape.
func NewsLink(base, title string) string {
	b := []byte(strings.ToLower(title))
	for i, c := range b {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			b[i] = '-'
		}
	}
	return base + "#" + string(b)
}
