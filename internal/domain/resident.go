package domain

import "time"

// Resident is an account holder. IsActive is flipped to false by the
// penalty escalation engine when a bill reaches the suspended stage.
type Resident struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// OccupiedUnit is one row of the occupancy snapshot the bill generator
// iterates: a unit, its current resident, and the recorded area.
// AreaSqm is 0 for legacy units with no recorded area; those fall back
// to the flat management fee.
type OccupiedUnit struct {
	UnitID     int64   `json:"unit_id"`
	UnitCode   string  `json:"unit_code"`
	ResidentID int64   `json:"resident_id"`
	AreaSqm    float64 `json:"area_sqm"`
}
