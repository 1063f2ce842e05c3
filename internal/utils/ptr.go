package utils

import (
	"math"
	"strings"
)

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimmedOrNil is StringOrNil for optional inputs.
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return StringOrNil(*s)
}

// Megabytes converts a byte count to MiB rounded to two decimals.
func Megabytes(n int64) float64 {
	return math.Round(float64(n)/(1024*1024)*100) / 100
}
