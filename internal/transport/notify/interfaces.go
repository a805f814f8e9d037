package notify

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Publisher подмножество *nats.Conn, нужное для отправки событий.
type Publisher interface {
	Publish(subject string, data []byte) error
}
