// Package applyfine implements the Apply Fine use case for manual charges.
package applyfine
