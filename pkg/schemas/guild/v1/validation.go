package guild

import (
	"errors"
	"fmt"
)

var ErrInvalidPayload = errors.New("invalid payload")

func invalid(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidPayload, field)
}

func (s ServerRef) Validate() error {
	if s.ServerID == "" {
		return invalid("server.server_id")
	}
	return nil
}

func (e RoleCreatedV1) Validate() error {
	if err := e.Server.Validate(); err != nil {
		return err
	}
	if e.Role.ID == "" {
		return invalid("role.id")
	}
	return nil
}

func (e RoleUpdatedV1) Validate() error {
	if err := e.Server.Validate(); err != nil {
		return err
	}
	if e.Role.ID == "" {
		return invalid("role.id")
	}
	return nil
}

func (e RoleDeletedV1) Validate() error {
	if err := e.Server.Validate(); err != nil {
		return err
	}
	if e.RoleID == "" {
		return invalid("role_id")
	}
	if e.Role != nil && e.Role.ID != e.RoleID {
		return fmt.Errorf("%w: role.id %q does not match role_id %q", ErrInvalidPayload, e.Role.ID, e.RoleID)
	}
	return nil
}

func (e ChannelDeletedV1) Validate() error {
	if err := e.Server.Validate(); err != nil {
		return err
	}
	if e.ChannelID == "" {
		return invalid("channel_id")
	}
	if e.Channel != nil && e.Channel.ID != e.ChannelID {
		return fmt.Errorf("%w: channel.id %q does not match channel_id %q", ErrInvalidPayload, e.Channel.ID, e.ChannelID)
	}
	return nil
}
