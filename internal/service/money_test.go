package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		total, pct       float64
		wantSaved, wantF float64
	}{
		{"ten percent of twenty", 20, 10, 2, 18},
		{"zero percent", 49.99, 0, 0, 49.99},
		{"rounds to cents", 33.33, 12.5, 4.17, 29.16},
		{"clamped to total", 15, 150, 15, 0},
		{"zero total", 0, 20, 0, 0},
		{"negative pct ignored", 10, -5, 0, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			saved, final := ApplyDiscount(tt.total, tt.pct)
			assert.Equal(t, tt.wantSaved, saved)
			assert.Equal(t, tt.wantF, final)
		})
	}
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20.0, LineTotal([]float64{10}, []uint{2}))
	assert.Equal(t, 0.3, LineTotal([]float64{0.1, 0.2}, []uint{1, 1}))
	assert.Equal(t, 0.0, LineTotal(nil, nil))
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4.33, Round2(4.3333))
	assert.Equal(t, 2.68, Round2(2.675))
}
