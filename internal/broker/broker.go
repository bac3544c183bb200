// Package broker announces resource changes over MQTT so boards refresh
// without waiting for their next poll.
package broker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const DefaultTopicPrefix = "masjid/changes"

const (
	PrayerTimes  = "prayer-times"
	Events       = "events"
	Finance      = "finance"
	DonationInfo = "donation-info"
	ContactInfo  = "contact-info"
	AboutInfo    = "about-info"
)

type Change struct {
	Resource string    `json:"resource"`
	At       time.Time `json:"at"`
}

// Announcer is what write endpoints need. Noop is used when no broker is configured.
type Announcer interface {
	Announce(resource string)
}

type Noop struct{}

func (Noop) Announce(string) {}

type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

type Broker struct {
	client client
	prefix string
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("[broker] connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("[broker] connection lost")
}

// Connect dials brokerURL (e.g. tcp://localhost:1883) with auto-reconnect.
func Connect(brokerURL, clientID string) (*Broker, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newBroker(c, DefaultTopicPrefix), nil
}

func newBroker(c client, prefix string) *Broker {
	return &Broker{client: c, prefix: strings.TrimSuffix(prefix, "/")}
}

func (b *Broker) topic(resource string) string {
	return b.prefix + "/" + resource
}

// Announce publishes a change notice. Failures are logged, never returned:
// a lost announcement only delays boards until their next poll.
func (b *Broker) Announce(resource string) {
	payload, err := json.Marshal(Change{Resource: resource, At: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Msg("[broker] marshal change")
		return
	}
	token := b.client.Publish(b.topic(resource), 1, false, payload)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		log.Error().Err(token.Error()).Str("resource", resource).Msg("[broker] publish failed")
		return
	}
	log.Debug().Str("resource", resource).Msg("[broker] change announced")
}

// Changes subscribes to all announcements. Notices arriving while the
// channel is full are dropped.
func (b *Broker) Changes(buffer int) (<-chan string, error) {
	ch := make(chan string, buffer)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var change Change
		if err := json.Unmarshal(msg.Payload(), &change); err != nil || change.Resource == "" {
			change.Resource = strings.TrimPrefix(msg.Topic(), b.prefix+"/")
		}
		select {
		case ch <- change.Resource:
		default:
		}
	}

	token := b.client.Subscribe(b.prefix+"/#", 1, handler)
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("subscribe %s/#: %w", b.prefix, token.Error())
	}
	return ch, nil
}

func (b *Broker) Close() {
	b.client.Disconnect(250)
	log.Info().Msg("[broker] disconnected")
}
