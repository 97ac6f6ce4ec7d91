package models

// Role is a member's permission level within a group.
type Role string

const (
	// RoleAdmin can add members and delete the group.
	RoleAdmin Role = "admin"

	// RoleMember can add and view expenses.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Group is a set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the creator, who starts as admin.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a user's membership in a group.
type Member struct {
	GroupID string
	UserID  string

	// Name is the member's display name, taken from the user account.
	Name string

	Role     Role
	JoinedAt int64
}

// IsAdmin reports whether the member administers the group.
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
