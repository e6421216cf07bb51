// Package policy decides when a sent message may be delivered directly to
// its target process.
package policy
