// Package frida holds the protocol-level configuration shared by the prover
// and verifier engines: domain-size bounds, FRI options and the error
// taxonomy. Both sides of the protocol must agree on everything in this
// package, byte for byte.
package frida

const (
	// MinDomainSize is the smallest evaluation domain the protocol accepts.
	MinDomainSize = 8

	// MaxDomainSize is the protocol ceiling for the evaluation domain. It
	// bounds the amount of data a single commitment can cover.
	MaxDomainSize = 1 << 20
)
