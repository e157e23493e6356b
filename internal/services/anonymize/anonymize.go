// Package anonymize derives pseudonymous author tags for audit correlation.
//
// The tag is an unsalted sha256 of the platform identity, so the same
// submitter always maps to the same tag while the tag alone cannot be
// reversed. This is pseudonymization, not anonymization: the confession text
// itself may still identify its author.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Tag returns the pseudonymous tag for a submitter id.
func Tag(submitterID int64) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(submitterID, 10)))
	return hex.EncodeToString(sum[:])
}
