package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTotal(t *testing.T) {
	tests := []struct {
		name  string
		labor float64
		lines []Line
		want  float64
	}{
		{name: "labor only", labor: 25, want: 25},
		{name: "single part", labor: 10, lines: []Line{{Quantity: 2, UnitPrice: 12.5}}, want: 35},
		{name: "several parts", labor: 0, lines: []Line{{Quantity: 1, UnitPrice: 35}, {Quantity: 3, UnitPrice: 10}}, want: 65},
		{name: "rounds to cents", labor: 0.1, lines: []Line{{Quantity: 3, UnitPrice: 0.3333}}, want: 1.1},
		{name: "nothing", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ServiceTotal(tc.labor, tc.lines), 0.0001)
		})
	}
}

func TestPartsTotal(t *testing.T) {
	assert.InDelta(t, 47.5, PartsTotal([]Line{{Quantity: 1, UnitPrice: 35}, {Quantity: 1, UnitPrice: 12.5}}), 0.0001)
	assert.Zero(t, PartsTotal(nil))
}

func TestRepairTotal(t *testing.T) {
	assert.Nil(t, RepairTotal(nil))
	assert.Nil(t, RepairTotal([]float64{}))

	total := RepairTotal([]float64{40, 62.5})
	require.NotNil(t, total)
	assert.InDelta(t, 102.5, *total, 0.0001)

	afterDelete := RepairTotal([]float64{40})
	require.NotNil(t, afterDelete)
	assert.InDelta(t, 40, *afterDelete, 0.0001)

	zero := RepairTotal([]float64{0})
	require.NotNil(t, zero)
	assert.Zero(t, *zero)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.0, Round2(2.999))
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
}
