package ledger

import (
	"sort"

	"acente-backend/internal/models"
)

// AmountEpsilon - float tutarlarda kuruş düzeyi kayma toleransı.
// paid karşılaştırması kapalı aralıkla yapılır: paid >= amount - eps.
const AmountEpsilon = 0.01

// DebtView - Tek borcun ödemelerden türetilmiş hali
type DebtView struct {
	Debt                 models.Debt       `json:"debt"`
	PaidAmount           float64           `json:"paid_amount"`
	Status               models.DebtStatus `json:"status"`
	MismatchedPaymentIDs []uint            `json:"mismatched_payment_ids,omitempty"` // Para birimi borçla uyuşmayan, toplam dışı bırakılan ödemeler
}

// CurrencyBalance - Para birimi bazında bakiye
type CurrencyBalance struct {
	Currency    string  `json:"currency"`
	TotalDebt   float64 `json:"total_debt"`
	TotalPaid   float64 `json:"total_paid"`
	Outstanding float64 `json:"outstanding"` // Kalan borç, ekran için 0'ın altına düşmez
	Net         float64 `json:"net"`         // İşaretli ham bakiye (mutabakat/denetim için)
}

// Reconciliation - Bir tedarikçinin borç/ödeme mutabakatı.
// Saf hesaplamadır; girdiler dışında hiçbir durum tutmaz.
type Reconciliation struct {
	Debts           []DebtView               `json:"debts"`            // tarih desc, id desc
	Payments        []models.Payment         `json:"payments"`         // tarih desc, id desc
	GeneralPayments []models.Payment         `json:"general_payments"` // Borca bağlı olmayan veya borcu silinmiş ödemeler
	DebtBuckets     []Bucket[models.Debt]    `json:"debt_buckets"`
	PaymentBuckets  []Bucket[models.Payment] `json:"payment_buckets"`
	Balances        []CurrencyBalance        `json:"balances"`

	// Para birimleri ayrımı yapılmadan toplanmış kaba toplamlar.
	// Karışık para biriminde kayıplıdır, sadece ekran özeti için.
	RawTotalDebt float64 `json:"raw_total_debt"`
	RawTotalPaid float64 `json:"raw_total_paid"`
}

// StatusFor - Ödeme toplamından borç durumunu türetir
func StatusFor(amount, paid float64) models.DebtStatus {
	switch {
	case paid <= 0:
		return models.DebtStatusUnpaid
	case paid >= amount-AmountEpsilon:
		return models.DebtStatusPaid
	default:
		return models.DebtStatusPartiallyPaid
	}
}

// Reconcile - Tedarikçinin tüm borç ve ödemelerini mutabakata sokar.
// Borca bağlı ödeme, borçla aynı para birimindeyse borcun ödenen
// toplamına sayılır; farklı para birimindeyse veri girişi hatası kabul
// edilip dışlanır ve DebtView üzerinde işaretlenir. Borcu silinmiş
// (sahipsiz) ödemeler hata üretmez, genel ödeme sayılır.
func Reconcile(debts []models.Debt, payments []models.Payment) Reconciliation {
	sortedDebts := make([]models.Debt, len(debts))
	copy(sortedDebts, debts)
	sort.SliceStable(sortedDebts, func(i, j int) bool {
		if !sortedDebts[i].Date.Equal(sortedDebts[j].Date) {
			return sortedDebts[i].Date.After(sortedDebts[j].Date)
		}
		return sortedDebts[i].ID > sortedDebts[j].ID
	})

	sortedPayments := make([]models.Payment, len(payments))
	copy(sortedPayments, payments)
	sort.SliceStable(sortedPayments, func(i, j int) bool {
		if !sortedPayments[i].Date.Equal(sortedPayments[j].Date) {
			return sortedPayments[i].Date.After(sortedPayments[j].Date)
		}
		return sortedPayments[i].ID > sortedPayments[j].ID
	})

	debtIDs := make(map[uint]bool, len(sortedDebts))
	for _, d := range sortedDebts {
		debtIDs[d.ID] = true
	}

	views := make([]DebtView, 0, len(sortedDebts))
	for _, d := range sortedDebts {
		view := DebtView{Debt: d}
		for _, p := range sortedPayments {
			if p.DebtID == nil || *p.DebtID != d.ID {
				continue
			}
			if p.Currency != d.Currency {
				view.MismatchedPaymentIDs = append(view.MismatchedPaymentIDs, p.ID)
				continue
			}
			view.PaidAmount += p.Amount
		}
		view.Status = StatusFor(d.Amount, view.PaidAmount)
		views = append(views, view)
	}

	general := make([]models.Payment, 0)
	for _, p := range sortedPayments {
		if p.DebtID == nil || !debtIDs[*p.DebtID] {
			general = append(general, p)
		}
	}

	debtBuckets := GroupByCurrency(sortedDebts,
		func(d models.Debt) string { return d.Currency },
		func(d models.Debt) float64 { return d.Amount })
	paymentBuckets := GroupByCurrency(sortedPayments,
		func(p models.Payment) string { return p.Currency },
		func(p models.Payment) float64 { return p.Amount })

	r := Reconciliation{
		Debts:           views,
		Payments:        sortedPayments,
		GeneralPayments: general,
		DebtBuckets:     debtBuckets,
		PaymentBuckets:  paymentBuckets,
		Balances:        balances(debtBuckets, paymentBuckets),
	}
	for _, b := range debtBuckets {
		r.RawTotalDebt += b.Total
	}
	for _, b := range paymentBuckets {
		r.RawTotalPaid += b.Total
	}
	return r
}

// balances - Borç ve ödeme kovalarını para birimi bazında birleştirir.
// Sıra: önce borçlarda görülen para birimleri, sonra yalnız ödemelerde
// görülenler.
func balances(debtBuckets []Bucket[models.Debt], paymentBuckets []Bucket[models.Payment]) []CurrencyBalance {
	out := make([]CurrencyBalance, 0, len(debtBuckets))
	index := make(map[string]int)

	for _, b := range debtBuckets {
		index[b.Currency] = len(out)
		out = append(out, CurrencyBalance{Currency: b.Currency, TotalDebt: b.Total})
	}
	for _, b := range paymentBuckets {
		i, ok := index[b.Currency]
		if !ok {
			i = len(out)
			index[b.Currency] = i
			out = append(out, CurrencyBalance{Currency: b.Currency})
		}
		out[i].TotalPaid = b.Total
	}

	for i := range out {
		out[i].Net = out[i].TotalDebt - out[i].TotalPaid
		if out[i].Net > 0 {
			out[i].Outstanding = out[i].Net
		}
	}
	return out
}
