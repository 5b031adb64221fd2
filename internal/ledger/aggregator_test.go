package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	Currency string
	Amount   float64
}

func TestGroupByCurrency(t *testing.T) {
	entries := []fakeEntry{
		{Currency: "TRY", Amount: 100},
		{Currency: "USD", Amount: 40},
		{Currency: "TRY", Amount: 60.5},
		{Currency: "EUR", Amount: 10},
	}

	buckets := GroupByCurrency(entries,
		func(e fakeEntry) string { return e.Currency },
		func(e fakeEntry) float64 { return e.Amount })

	require.Len(t, buckets, 3)

	// Kova sırası ilk görülme sırasıdır
	assert.Equal(t, "TRY", buckets[0].Currency)
	assert.Equal(t, "USD", buckets[1].Currency)
	assert.Equal(t, "EUR", buckets[2].Currency)

	assert.Equal(t, 160.5, buckets[0].Total)
	assert.Equal(t, float64(40), buckets[1].Total)
	assert.Equal(t, float64(10), buckets[2].Total)

	// Kova toplamı her zaman içindeki kayıtların toplamıdır
	for _, b := range buckets {
		var sum float64
		for _, item := range b.Items {
			sum += item.Amount
		}
		assert.Equal(t, b.Total, sum)
	}
}

func TestGroupByCurrencyEmpty(t *testing.T) {
	buckets := GroupByCurrency(nil,
		func(e fakeEntry) string { return e.Currency },
		func(e fakeEntry) float64 { return e.Amount })

	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestGroupByCurrencySingleItemPerBucket(t *testing.T) {
	entries := []fakeEntry{
		{Currency: "GBP", Amount: 12.25},
	}

	buckets := GroupByCurrency(entries,
		func(e fakeEntry) string { return e.Currency },
		func(e fakeEntry) float64 { return e.Amount })

	require.Len(t, buckets, 1)
	assert.Equal(t, "GBP", buckets[0].Currency)
	assert.Equal(t, 12.25, buckets[0].Total)
	require.Len(t, buckets[0].Items, 1)
}
