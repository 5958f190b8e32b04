// Package percent derives the relative change of an account balance against
// its recorded baseline.
package percent

// Change returns (newAmount - baseValue) / |baseValue| * 100.
//
// The second return value reports whether a percentage is derivable: it is
// false when baseValue is zero, in which case callers must keep the account's
// percentage unset rather than store NaN or an infinity.
func Change(baseValue, newAmount float64) (float64, bool) {
	if baseValue == 0 {
		return 0, false
	}
	abs := baseValue
	if abs < 0 {
		abs = -abs
	}
	return (newAmount - baseValue) / abs * 100, true
}
