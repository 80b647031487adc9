package guild

// RoleDeletedV1 is pushed when a role is removed from a server.
// The gateway only guarantees the ID; Role is set by producers that still
// had the entity at hand and is used when the consumer never cached it.
type RoleDeletedV1 struct {
	Server ServerRef     `json:"server"`
	RoleID string        `json:"role_id"`
	Role   *RoleSnapshot `json:"role,omitempty"`
}
