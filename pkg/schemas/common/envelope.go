package common

// Envelope is the message body on every gateway exchange.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// GenericEnvelope is the typed form consumers decode into.
type GenericEnvelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// Wrap builds an Envelope around data with fresh metadata for em.
func Wrap(em EventMeta, producer string, data any) Envelope {
	return Envelope{Meta: NewMeta(em.EventType, producer), Data: data}
}
