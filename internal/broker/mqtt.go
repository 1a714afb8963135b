package broker

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/salmatx/bmsnode/internal/logging"
)

var log = logging.For("broker")

// MQTTPublisher publishes over MQTT using paho's client, connecting with a
// randomly generated client id so repeated INIT cycles during testing never
// collide with a stale session on the broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// DialMQTT connects to uri and returns a ready Publisher. Connection
// failures are surfaced to the caller, who treats them per the
// "unrecoverable init" error class.
func DialMQTT(uri string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(uri).
		SetClientID("bmsnode-" + uuid.NewString()).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("broker: connect to %s timed out", uri)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("broker: connect to %s: %w", uri, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// Publish fires the payload at Topic with QoS 0 and does not wait for
// delivery. Failures are logged here so every call site gets the same
// "log, continue" treatment without repeating it.
func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, QoS, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Warn("publish failed", "topic", topic, "err", err)
		}
	}()
	return nil
}

// Close disconnects, waiting up to 250ms for in-flight work to drain.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
