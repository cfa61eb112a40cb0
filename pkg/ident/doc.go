// Package ident isolates the two ambient inputs of the decision engines:
// identifier generation and the wall clock. Production code uses
// UUIDGenerator and SystemClock; tests inject Sequence and FixedClock so
// engine output is fully deterministic.
package ident
