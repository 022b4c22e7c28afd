package domain

import "time"

// BookingCharge is a confirmed amenity booking with a fixed price,
// consumed by the bill generator the same way as vehicle charge events:
// once BillID is set it is never billed again.
type BookingCharge struct {
	ID         int64     `json:"id"`
	ResidentID int64     `json:"resident_id"`
	UnitID     int64     `json:"unit_id"`
	Amenity    string    `json:"amenity"`
	Price      int64     `json:"price"` // VND
	BookedFor  time.Time `json:"booked_for"`
	BillID     *int64    `json:"bill_id"`
}
