package guild

// ChannelDeletedV1 is pushed when a channel is removed from a server.
type ChannelDeletedV1 struct {
	Server    ServerRef        `json:"server"`
	ChannelID string           `json:"channel_id"`
	Channel   *ChannelSnapshot `json:"channel,omitempty"`
}
