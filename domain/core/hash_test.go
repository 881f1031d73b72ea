package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTableHash(t *testing.T) {
	base := ComputeTableHash([]string{"Stage", "Count"}, [][]string{{"pre", "1"}})
	assert.Len(t, base.String(), 64)
	assert.Equal(t, base, ComputeTableHash([]string{"Stage", "Count"}, [][]string{{"pre", "1"}}))

	// cell boundaries are part of the encoding
	assert.NotEqual(t, base, ComputeTableHash([]string{"Stage", "Count"}, [][]string{{"pre1", ""}}))
	assert.NotEqual(t, base, ComputeTableHash([]string{"StageCount"}, [][]string{{"pre", "1"}}))
	assert.NotEqual(t, base, ComputeTableHash([]string{"Stage", "Count"}, nil))
}
