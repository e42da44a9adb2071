// Package growth implements the Flow Lenia growth function and its fused
// accumulation into an affinity buffer (spec §4.4).
package growth

import "github.com/chewxy/math32"

// Growth applies the bell function g(u) = 2*exp(-(u-mu)^2/(2*sigma^2)) - 1,
// peaking at u == mu with value 1.
func Growth(u, mu, sigma float32) float32 {
	diff := u - mu
	s := 2 * sigma * sigma
	return 2*math32.Exp(-diff*diff/s) - 1
}

// Accumulate fuses convolution output with weighted growth into target:
// target[i] += weight * g(conv[i]). Single pass, no intermediate
// allocation.
func Accumulate(conv []float32, target []float32, weight, mu, sigma float32) {
	s := 2 * sigma * sigma
	for i, c := range conv {
		diff := c - mu
		g := 2*math32.Exp(-diff*diff/s) - 1
		target[i] += weight * g
	}
}
