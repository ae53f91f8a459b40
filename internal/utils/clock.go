package utils

import (
	"time"
)

// KST is the fixed UTC+9 offset every stored timestamp uses. Creation times
// are recorded once in this zone and never updated afterwards.
var KST = time.FixedZone("KST", 9*60*60)

// NowKST returns the current time in the fixed UTC+9 offset.
func NowKST() time.Time {
	return time.Now().In(KST)
}
