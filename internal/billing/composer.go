package billing

import (
	"fmt"
	"math"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/utils"
)

// FeeSchedule is a read-only price lookup. A code that is not
// configured returns 0, so a missing fee degrades to a zero charge
// instead of failing the run.
type FeeSchedule interface {
	Price(code string) int64
}

// VehicleCount aggregates a resident's active parking cards by type.
type VehicleCount struct {
	Type  domain.VehicleType
	Count int
}

// OneTimeCharge is an approved card fee event not yet attached to a bill.
type OneTimeCharge struct {
	EventID     int64
	RequestType domain.CardRequestType
	VehicleType domain.VehicleType
	Amount      int64
}

// NewCard is a parking card issued during the prior period whose first
// month is charged pro rata. IssuedDay is the day-of-month of issuance.
type NewCard struct {
	CardID    int64
	Type      domain.VehicleType
	IssuedDay int
}

// Booking is a confirmed amenity booking not yet attached to a bill.
type Booking struct {
	ChargeID int64
	Amenity  string
	Amount   int64
}

// UnitSnapshot is everything the composer needs to price one occupied
// unit for one period. Assembling it is the generator's job; composing
// it is pure.
type UnitSnapshot struct {
	UnitID         int64
	ResidentID     int64
	AreaSqm        float64
	Vehicles       []VehicleCount
	OneTimeCharges []OneTimeCharge
	NewCards       []NewCard
	Bookings       []Booking
}

// Line is one priced statement line.
type Line struct {
	Label     string
	UnitPrice int64
	Quantity  int32
	Total     int64
}

// Statement is the composer's output: priced lines, their sum, and the
// ids of consumed charge sources the caller must mark as billed.
type Statement struct {
	Lines           []Line
	Total           int64
	ChargeEventIDs  []int64
	ProratedCardIDs []int64
	BookingIDs      []int64
}

// ComposeMonthly prices one occupied unit for the (month, year) period.
// Management and parking fees cover the issue month; one-time card
// fees, card prorations, and amenity bookings settle the prior month.
// Negative inputs are clamped to zero before any multiplication so a
// bad fee, area, or count can never reduce the total.
func ComposeMonthly(snap UnitSnapshot, fees FeeSchedule, month, year int) Statement {
	var st Statement

	// Management fee: by area when recorded, flat fallback otherwise.
	// Exactly one of the two lines is emitted.
	area := snap.AreaSqm
	if area < 0 {
		area = 0
	}
	perSqm := clampPrice(fees.Price(domain.FeeManagementPerSqm))
	if area > 0 && perSqm > 0 {
		total := int64(math.Round(area * float64(perSqm)))
		st.addLine(fmt.Sprintf("Management fee (%.1f m2)", area), perSqm, 1, total)
	} else if flat := clampPrice(fees.Price(domain.FeeManagementFlat)); flat > 0 {
		st.addLine("Management fee", flat, 1, flat)
	}

	// Flat administrative fee, when configured.
	if admin := clampPrice(fees.Price(domain.FeeAdministrative)); admin > 0 {
		st.addLine("Administrative fee", admin, 1, admin)
	}

	// One aggregated parking line per vehicle type with a nonzero count
	// and a nonzero monthly rate.
	for _, v := range snap.Vehicles {
		if v.Count <= 0 {
			continue
		}
		rate := clampPrice(fees.Price(domain.ParkingFeeCode(v.Type)))
		if rate <= 0 {
			continue
		}
		total := rate * int64(v.Count)
		st.addLine(fmt.Sprintf("Parking fee - %s x%d", vehicleLabel(v.Type), v.Count), rate, int32(v.Count), total)
	}

	// One-time card fees approved in the prior period.
	for _, c := range snap.OneTimeCharges {
		if c.Amount <= 0 {
			continue
		}
		st.addLine(fmt.Sprintf("%s (%s)", cardFeeLabel(c.RequestType), vehicleLabel(c.VehicleType)), c.Amount, 1, c.Amount)
		st.ChargeEventIDs = append(st.ChargeEventIDs, c.EventID)
	}

	// Cards issued mid-prior-month: first month charged pro rata over
	// the remaining days of that month.
	priorMonth, priorYear := utils.PreviousPeriod(month, year)
	daysInPrior := utils.DaysInMonth(priorYear, priorMonth)
	for _, card := range snap.NewCards {
		daysToCharge := daysInPrior - card.IssuedDay + 1
		if daysToCharge <= 0 || daysToCharge > daysInPrior {
			continue
		}
		rate := clampPrice(fees.Price(domain.ParkingFeeCode(card.Type)))
		if rate <= 0 {
			continue
		}
		dailyRate := float64(rate) / float64(daysInPrior)
		total := int64(math.Round(dailyRate * float64(daysToCharge)))
		if total <= 0 {
			continue
		}
		label := fmt.Sprintf("Parking proration - %s (%d of %d days)", vehicleLabel(card.Type), daysToCharge, daysInPrior)
		st.addLine(label, total, 1, total)
		st.ProratedCardIDs = append(st.ProratedCardIDs, card.CardID)
	}

	// Confirmed amenity bookings from the prior period, fixed price each.
	for _, b := range snap.Bookings {
		if b.Amount <= 0 {
			continue
		}
		st.addLine(fmt.Sprintf("Amenity booking - %s", b.Amenity), b.Amount, 1, b.Amount)
		st.BookingIDs = append(st.BookingIDs, b.ChargeID)
	}

	return st
}

// ComposeMoveIn prices the remainder of the current month for a unit
// occupied mid-period. Only management and administrative fees are
// prorated; parking and bookings wait for the next full cycle. Each
// line is rounded independently.
func ComposeMoveIn(areaSqm float64, fees FeeSchedule, daysToCharge, daysInMonth int) Statement {
	var st Statement
	if daysToCharge <= 0 || daysInMonth <= 0 {
		return st
	}
	ratio := float64(daysToCharge) / float64(daysInMonth)

	area := areaSqm
	if area < 0 {
		area = 0
	}
	perSqm := clampPrice(fees.Price(domain.FeeManagementPerSqm))
	if area > 0 && perSqm > 0 {
		full := area * float64(perSqm)
		total := int64(math.Round(full * ratio))
		if total > 0 {
			st.addLine(fmt.Sprintf("Management fee (%.1f m2, %d of %d days)", area, daysToCharge, daysInMonth), total, 1, total)
		}
	} else if flat := clampPrice(fees.Price(domain.FeeManagementFlat)); flat > 0 {
		total := int64(math.Round(float64(flat) * ratio))
		if total > 0 {
			st.addLine(fmt.Sprintf("Management fee (%d of %d days)", daysToCharge, daysInMonth), total, 1, total)
		}
	}

	if admin := clampPrice(fees.Price(domain.FeeAdministrative)); admin > 0 {
		total := int64(math.Round(float64(admin) * ratio))
		if total > 0 {
			st.addLine(fmt.Sprintf("Administrative fee (%d of %d days)", daysToCharge, daysInMonth), total, 1, total)
		}
	}

	return st
}

func (st *Statement) addLine(label string, unitPrice int64, qty int32, total int64) {
	st.Lines = append(st.Lines, Line{Label: label, UnitPrice: unitPrice, Quantity: qty, Total: total})
	st.Total += total
}

func clampPrice(p int64) int64 {
	if p < 0 {
		return 0
	}
	return p
}

func vehicleLabel(t domain.VehicleType) string {
	switch t {
	case domain.VehicleTypeBicycle:
		return "Bicycle"
	case domain.VehicleTypeMotorbike:
		return "Motorbike"
	case domain.VehicleTypeCar:
		return "Car"
	}
	return string(t)
}

func cardFeeLabel(t domain.CardRequestType) string {
	if t == domain.CardRequestReissue {
		return "Card reissue fee"
	}
	return "Card issuance fee"
}
