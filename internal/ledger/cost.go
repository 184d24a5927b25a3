package ledger

import "time"

const msPerHour = 3_600_000

// ComputeDurationMs returns the whole milliseconds between clockIn and clockOut
func ComputeDurationMs(clockIn, clockOut time.Time) int64 {
	return clockOut.Sub(clockIn).Milliseconds()
}

// ComputeCost returns the cost of durationMs billed at hourlyRate per hour
func ComputeCost(durationMs int64, hourlyRate float64) float64 {
	return float64(durationMs) / msPerHour * hourlyRate
}
