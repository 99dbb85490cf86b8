package domain

import "context"

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleSupervisor    Role = "Supervisor"
	RoleTicketAgent   Role = "TicketAgent"
)

// CancellationRoles are the roles allowed to cancel a reservation.
var CancellationRoles = []Role{RoleAdministrator, RoleSupervisor, RoleTicketAgent}

type Employee struct {
	ID        int
	FirstName string
	LastName  string
	Role      Role
	Active    bool
}

// MayCancel reports whether the employee holds one of the authorized roles.
func (e Employee) MayCancel() bool {
	for _, role := range CancellationRoles {
		if e.Role == role {
			return true
		}
	}
	return false
}

type EmployeeRepository interface {
	GetById(ctx context.Context, employeeID int) (*Employee, error)
}
