//go:build !checkbounds

package lattice

func assertInBounds(*Lattice, int, int) {}
