// 2 Mar 2023

// Package white strips white space out of byte slices read from
// sequence files.
package white

var asciiSpace = [256]bool{
	'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true,
}

// IsWhite is true for ASCII white space.
func IsWhite(c byte) bool { return asciiSpace[c] }

// Remove deletes white space from *s in place. The length is shortened,
// the capacity is unchanged.
func Remove(s *[]byte) {
	b := *s
	n := 0
	for _, c := range b {
		if !asciiSpace[c] {
			b[n] = c
			n++
		}
	}
	*s = b[:n]
}

// Has is true if there is any white space in b.
func Has(b []byte) bool {
	for _, c := range b {
		if asciiSpace[c] {
			return true
		}
	}
	return false
}
