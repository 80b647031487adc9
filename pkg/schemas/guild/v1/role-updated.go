package guild

// RoleUpdatedV1 carries the full new state of a changed role.
type RoleUpdatedV1 struct {
	Server ServerRef    `json:"server"`
	Role   RoleSnapshot `json:"role"`
}
