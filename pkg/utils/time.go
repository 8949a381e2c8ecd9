package utils

import (
	"math"
	"time"
)

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}

// Round2 rounds a number to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
