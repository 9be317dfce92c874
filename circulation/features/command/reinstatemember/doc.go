// Package reinstatemember implements the Reinstate Member use case.
package reinstatemember
