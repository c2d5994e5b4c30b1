package board

// Role describes a team member's function on the board.
type Role string

const (
	RoleScrumMaster    Role = "scrum-master"
	RoleDeveloper      Role = "developer"
	RoleProductManager Role = "product-manager"
	RoleStakeholder    Role = "stakeholder"
)

// User is a team member. The store never mutates users; they are replaced
// wholesale when a fresh snapshot loads.
type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     Role    `json:"role"`
	Mood     string  `json:"mood,omitempty"`
	Workload float64 `json:"workload,omitempty"`
}
