package domain

const (
	VehicleTypeActive   = "active"
	VehicleTypeInactive = "inactive"
)

// Reference data for the kind of vehicle a route is driven with.
// Only active types are assignable to new routes.
type VehicleType struct {
	Code   string
	Name   string
	Status string
}

func (v *VehicleType) ActiveType() bool {
	return v.Status == VehicleTypeActive
}
