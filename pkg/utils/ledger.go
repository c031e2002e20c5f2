package utils

import "math"

// DefaultCommissionRate is the platform's cut of a booking's total price.
// Overridable via configuration; the walker share is always the complement.
const DefaultCommissionRate = 0.13

// Round2 rounds a currency amount to 2 decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Commission returns the platform's cut of the total price.
func Commission(total, rate float64) float64 {
	return Round2(total * rate)
}

// WalkerAmount returns the walker's share of the total price. Computed by
// subtraction from the rounded commission so that commission + amount always
// reconstructs the total exactly, whatever the configured rate.
func WalkerAmount(total, rate float64) float64 {
	return Round2(total - Commission(total, rate))
}

// HourlyPrice converts a walker's hourly rate and a duration in minutes to a
// booking base price.
func HourlyPrice(hourlyRate float64, durationMinutes int) float64 {
	return Round2(hourlyRate * float64(durationMinutes) / 60)
}
