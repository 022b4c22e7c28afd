package domain

import "time"

// Fee codes known to the billing engine. Prices live in the fee_entries
// table and are administered outside this service; a missing code reads
// as price 0.
const (
	FeeManagementPerSqm = "MGMT_PER_SQM" // per m2 of unit area, monthly
	FeeManagementFlat   = "MGMT_FLAT"    // legacy units with no recorded area
	FeeAdministrative   = "ADMIN_FLAT"   // flat administrative fee, optional
	FeeParkingBicycle   = "PARK_BICYCLE" // per vehicle, monthly
	FeeParkingMotorbike = "PARK_MOTORBIKE"
	FeeParkingCar       = "PARK_CAR"
	FeeCardIssue        = "CARD_ISSUE"   // one-time, on approved issuance
	FeeCardReissue      = "CARD_REISSUE" // one-time, on approved reissue
	FeeLatePayment      = "LATE_FEE"     // flat, applied at penalty stages 1 and 2
)

// FeeEntry is a priced fee code from the externally administered schedule.
type FeeEntry struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"` // VND
	UpdatedAt time.Time `json:"updated_at"`
}

// FeeTable is a point-in-time snapshot of the fee schedule, loaded once
// per billing run so every unit in the run sees identical prices.
type FeeTable map[string]int64

// Price returns the current price for a code, or 0 when the code is not
// configured. Negative configured prices are clamped to 0.
func (t FeeTable) Price(code string) int64 {
	p, ok := t[code]
	if !ok || p < 0 {
		return 0
	}
	return p
}
