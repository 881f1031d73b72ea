package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// ComputeTableHash fingerprints a table's rendered content: header first, then
// each row in order. Cells are length-prefixed so no two tables share an
// encoding. The result does not depend on the file format the table was
// written in.
func ComputeTableHash(columns []string, rows [][]string) Hash {
	h := sha256.New()
	var buf []byte
	writeRow := func(cells []string) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(len(cells)))
		for _, c := range cells {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(len(c)))
			buf = append(buf, c...)
		}
		h.Write(buf)
	}

	writeRow(columns)
	for _, row := range rows {
		writeRow(row)
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
