//go:build checkbounds

package lattice

import "fmt"

// assertInBounds panics when (x, y) falls outside l. Only compiled with the
// checkbounds tag; release builds leave lattice access unchecked.
func assertInBounds(l *Lattice, x, y int) {
	if x < 0 || x >= l.width || y < 0 || (y >= l.length && l.length > 0) {
		panic(fmt.Sprintf("lattice: (%d, %d) outside %dx%d", x, y, l.width, l.length))
	}
}
