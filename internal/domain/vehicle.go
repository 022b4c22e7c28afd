package domain

import "time"

type VehicleType string

const (
	VehicleTypeBicycle   VehicleType = "BICYCLE"
	VehicleTypeMotorbike VehicleType = "MOTORBIKE"
	VehicleTypeCar       VehicleType = "CAR"
)

// ParkingFeeCode maps a vehicle type to its monthly parking fee code.
func ParkingFeeCode(t VehicleType) string {
	switch t {
	case VehicleTypeBicycle:
		return FeeParkingBicycle
	case VehicleTypeMotorbike:
		return FeeParkingMotorbike
	case VehicleTypeCar:
		return FeeParkingCar
	}
	return ""
}

type CardRequestType string

const (
	CardRequestIssue   CardRequestType = "ISSUE"
	CardRequestReissue CardRequestType = "REISSUE"
)

// VehicleCard is an active parking card. Cards issued mid-month are
// prorated onto the next monthly bill, tracked by ProratedBillID.
type VehicleCard struct {
	ID             int64       `json:"id"`
	ResidentID     int64       `json:"resident_id"`
	UnitID         int64       `json:"unit_id"`
	VehicleType    VehicleType `json:"vehicle_type"`
	PlateNumber    string      `json:"plate_number"`
	IssuedOn       time.Time   `json:"issued_on"`
	Active         bool        `json:"active"`
	ProratedBillID *int64      `json:"prorated_bill_id"`
}

// VehicleChargeEvent is an approved one-time card fee (issuance or
// reissue) waiting to be attached to a bill. Once BillID is set the
// event is never picked up again.
type VehicleChargeEvent struct {
	ID          int64           `json:"id"`
	ResidentID  int64           `json:"resident_id"`
	UnitID      int64           `json:"unit_id"`
	RequestType CardRequestType `json:"request_type"`
	VehicleType VehicleType     `json:"vehicle_type"`
	Amount      int64           `json:"amount"` // VND
	ApprovedOn  time.Time       `json:"approved_on"`
	BillID      *int64          `json:"bill_id"`
}
