package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// HashToken derives a short stable fingerprint of a push token for use in
// task names. Task names travel through queue APIs and logs, so they carry
// the hash, NEVER the raw token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:16])
}

// keeps task names inside the queue's name alphabet. anything outside
// [a-z0-9] collapses to a dash.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// DeriveTaskName builds the queue task name that makes scheduling
// idempotent. Two submissions collide exactly when prayer, alert kind,
// mosque, push token and fire instant (to whole seconds) all match; any
// difference, including a new token on the same device owner, yields a
// fresh name. The name is a pure function of its inputs and holds no
// randomness, so racing sweeps derive the same name independently.
func DeriveTaskName(prayer string, kind AlertKind, mosqueID int, pushToken string, fireAt time.Time) string {
	return fmt.Sprintf("prayer-%s-%s-%d-%s-%d",
		slug(prayer), kind, mosqueID, HashToken(pushToken), fireAt.Unix())
}
