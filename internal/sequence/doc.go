// Package sequence computes generalized Fibonacci sequences
// a(0)=x, a(1)=y, a(i)=a(i-1)+a(i-2) with arbitrary-precision integers.
//
// The package has two stages. ParseRequest and Validate turn raw input into
// a Request or a tagged *apperrors.SequenceError. Engine.Compute turns a
// Request into a Result holding all n+1 terms, which serializes every term
// as a decimal string.
//
// # Cost model
//
// The full prefix is built by iterative accumulation: n big additions, the
// i-th on operands of about 0.694*i bits for the standard seed. Time is
// therefore O(n²) bit operations and the result itself holds Θ(n²) bits
// (about 0.0434*n² bytes of words plus 0.1045*n² bytes of decimal text).
// At n=1,000,000 that is tens of gigabytes, so the engine estimates the
// footprint up front (Estimate) and rejects requests above the effective
// memory limit with KindResourceExhausted instead of crashing.
//
// Term and TermMod answer single-term queries with fast doubling in
// O(log n) multiplications without materializing the prefix.
package sequence
