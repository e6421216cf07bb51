// Package idgen wraps the UUID generator used for message identifiers so that
// tests can stub it.
package idgen
