package guild

// RoleCreatedV1 is pushed when a role is added to a server.
type RoleCreatedV1 struct {
	Server ServerRef    `json:"server"`
	Role   RoleSnapshot `json:"role"`
}
