// Package addcopy implements the Add Copy use case.
package addcopy
