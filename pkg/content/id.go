package content

import (
	"crypto/md5"
	"encoding/hex"
)

// ContentID is the catalog id of an article: the first 12 hex characters of
// the MD5 digest of the URL exactly as given. Two spellings of the same page
// get different ids.
func ContentID(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:12]
}
