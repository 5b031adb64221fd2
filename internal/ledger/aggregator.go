package ledger

// Bucket - Tek para birimine ait toplam ve kayıtlar. Para birimleri
// arasında çevrim yapılmaz; her kod bağımsız bir kovadır.
type Bucket[T any] struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Items    []T     `json:"items"`
}

// GroupByCurrency - (tutar, para birimi) çiftlerini para birimine göre
// kovalara ayırır. Kova sırası, para biriminin listede ilk görüldüğü
// sıradır. Boş girdi boş sonuç döner.
func GroupByCurrency[T any](items []T, currency func(T) string, amount func(T) float64) []Bucket[T] {
	buckets := make([]Bucket[T], 0)
	index := make(map[string]int)

	for _, item := range items {
		code := currency(item)
		i, ok := index[code]
		if !ok {
			i = len(buckets)
			index[code] = i
			buckets = append(buckets, Bucket[T]{Currency: code})
		}
		buckets[i].Total += amount(item)
		buckets[i].Items = append(buckets[i].Items, item)
	}

	return buckets
}
