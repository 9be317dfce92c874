// Package suspendmember implements the Suspend Member use case.
package suspendmember
