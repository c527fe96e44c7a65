// Package xid mints prefixed identifiers for stored records, e.g.
// "inv-1756700000000000000-9f2c43aa1b0d77e1". The prefix makes an id
// readable in logs; the timestamp plus random suffix avoids
// coordinating with the store.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
