package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tarot-readings-backend/internal/fees"
)

func TestComputeFees_PercentOnly(t *testing.T) {
	platformFee, readerPayout := fees.ComputeFees(1200, 1000, 0)

	assert.Equal(t, int64(120), platformFee)
	assert.Equal(t, int64(1080), readerPayout)
}

func TestComputeFees_PercentPlusFixed(t *testing.T) {
	platformFee, readerPayout := fees.ComputeFees(2500, 1000, 30)

	assert.Equal(t, int64(280), platformFee)
	assert.Equal(t, int64(2220), readerPayout)
}

func TestComputeFees_FloorsPercentPart(t *testing.T) {
	// 2.5% of 999 is 24.975; the fee is floored to 24.
	platformFee, readerPayout := fees.ComputeFees(999, 250, 0)

	assert.Equal(t, int64(24), platformFee)
	assert.Equal(t, int64(975), readerPayout)
}

func TestComputeFees_ClampsFeeToPrice(t *testing.T) {
	platformFee, readerPayout := fees.ComputeFees(500, 10000, 100)

	assert.Equal(t, int64(500), platformFee)
	assert.Equal(t, int64(0), readerPayout)
}

func TestComputeFees_ZeroPrice(t *testing.T) {
	platformFee, readerPayout := fees.ComputeFees(0, 1000, 30)

	assert.Equal(t, int64(0), platformFee)
	assert.Equal(t, int64(0), readerPayout)
}

func TestComputeFees_SplitAlwaysSumsToPrice(t *testing.T) {
	prices := []int64{0, 1, 499, 500, 1200, 2500, 99999}
	rates := []int64{0, 1, 250, 1000, 2999, 10000}
	fixed := []int64{0, 1, 30, 1000}

	for _, price := range prices {
		for _, bps := range rates {
			for _, f := range fixed {
				platformFee, readerPayout := fees.ComputeFees(price, bps, f)
				assert.Equal(t, price, platformFee+readerPayout,
					"price=%d bps=%d fixed=%d", price, bps, f)
				assert.GreaterOrEqual(t, platformFee, int64(0))
				assert.GreaterOrEqual(t, readerPayout, int64(0))
			}
		}
	}
}
