// Package broker publishes serialized stats windows to the remote message
// broker. Publication is fire-and-forget: a failure is logged and the
// caller proceeds to push the window into the history ring regardless,
// matching the firmware's documented MQTT collaborator contract.
package broker

// Topic is the fixed destination for every stats publish.
const Topic = "bms/esp32/stats"

// QoS is always 0: no acknowledgment is awaited, no retry is attempted.
const QoS byte = 0

// Publisher is the contract the slow path consumes. A real deployment
// publishes over MQTT; tests, and the run command until a broker is
// dialed, use a recording no-op implementation.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Close()
}

// Dialer connects to a broker URI and returns a ready Publisher. Production
// wiring supplies DialMQTT; tests supply a fake that never touches the
// network.
type Dialer func(uri string) (Publisher, error)
