package order

import (
	"fmt"
	"time"
)

// NewID builds an order id from the creation time and ledger sequence,
// e.g. 20260102150405 + 0042.
func NewID(at time.Time, seq int64) string {
	if seq < 0 {
		seq = -seq
	}
	return at.UTC().Format("20060102150405") + fmt.Sprintf("%04d", seq%10000)
}
