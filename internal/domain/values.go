package domain

// Priority represents the urgency level of a todo item.
// Value object - immutable string enum, stored and serialized by name.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Ordinal returns the semantic rank of the priority, used for sorting.
// Storage keeps the name, so ORDER BY needs an explicit rank mapping.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return -1
	}
}

// TodoStatus represents the workflow state of a todo item.
// Value object - immutable string enum, stored and serialized by name.
type TodoStatus string

const (
	StatusNotStarted TodoStatus = "NOT_STARTED"
	StatusInProgress TodoStatus = "IN_PROGRESS"
	StatusBlocked    TodoStatus = "BLOCKED"
	StatusCompleted  TodoStatus = "COMPLETED"
	StatusCancelled  TodoStatus = "CANCELLED"
)

// Ordinal returns the semantic rank of the status, used for sorting.
func (s TodoStatus) Ordinal() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusBlocked:
		return 2
	case StatusCompleted:
		return 3
	case StatusCancelled:
		return 4
	default:
		return -1
	}
}

// SharePermission represents the access level granted on a shared list.
// Value object - immutable string enum, stored and serialized by name.
type SharePermission string

const (
	PermissionReadOnly  SharePermission = "READ_ONLY"
	PermissionReadWrite SharePermission = "READ_WRITE"
	PermissionAdmin     SharePermission = "ADMIN"
)
