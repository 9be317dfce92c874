// Package markcopyfound implements the Mark Copy Found use case.
package markcopyfound
