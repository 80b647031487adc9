package chat

// Channel is a snapshot of a text channel on a server.
type Channel struct {
	ID       string
	ServerID string
	Name     string
	Topic    string
	Position int
}
