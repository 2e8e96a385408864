package domain

const (
	RoleAdmin         = "admin"
	RoleDeliveryStaff = "delivery_staff"

	WorkerActive   = "active"
	WorkerInactive = "inactive"
)

// Delivery staff member. Workers are read-only from this subsystem's
// perspective; eligibility is checked, never mutated.
type Worker struct {
	ID     string
	Name   string
	Role   string
	Status string
}

// Eligible reports whether the worker may claim or be assigned routes.
func (w *Worker) Eligible() bool {
	return w.Role == RoleDeliveryStaff && w.Status == WorkerActive
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
