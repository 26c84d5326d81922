package model

import "math"

// Round2 rounds half up to two decimals. Every derived hour and percentage
// value goes through it so that redisplayed figures agree.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// RoundInt rounds half up to the nearest integer.
func RoundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}
