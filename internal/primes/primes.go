// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package primes finds primes for table sizes. Reducing a hash modulo a
// prime spreads it better than modulo a number with small factors.
package primes

// small primes for trial division, the wheel takes over after 29
var pt = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}

// gaps between numbers coprime to 30, starting at 31
var wheel = []int{6, 4, 2, 4, 2, 4, 6, 2}

// IsPrime reports whether n is prime.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	for _, p := range pt {
		if n == p {
			return true
		}
		if n%p == 0 {
			return false
		}
	}
	for i, k := 0, 31; k*k <= n; k += wheel[i] {
		if n%k == 0 {
			return false
		}
		i++
		if i >= len(wheel) {
			i = 0
		}
	}
	return true
}

// NextPrime returns the smallest prime >= n.
func NextPrime(n int) (p int) {
	if n <= 2 {
		return 2
	}
	p = n | 1
	for !IsPrime(p) {
		p += 2
	}
	return
}

// Primes calls f with each prime in [a, b].
func Primes(a, b int, f func(v int)) {
	for p := NextPrime(a); p <= b; p = NextPrime(p + 1) {
		f(p)
	}
}
