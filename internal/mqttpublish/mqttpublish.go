// Package mqttpublish adapts the project's MQTT client into a gesture
// publisher (component C6): a controller.Handler factory that publishes
// each recognized gesture as a small JSON payload to an MQTT topic
// scoped by button name and gesture type.
package mqttpublish

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/larsks/gpiobuttond/internal/controller"
	"github.com/larsks/gpiobuttond/internal/mqtt"
)

// Config configures the underlying MQTT connection: async connect with
// retry and backoff, same as mqtt.Config.
type Config struct {
	ServerURL         string
	ClientID          string
	TopicPrefix       string // defaults to "buttons"
	QoS               byte
	Retained          bool
	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
}

// Publisher owns an MQTT client and exposes per-gesture handler
// factories suitable for controller.Button's AddOnX methods.
type Publisher struct {
	client *mqtt.Client
	cfg    Config
}

// gesturePayload is the JSON body published for each gesture.
type gesturePayload struct {
	Button    string `json:"button_name"`
	Gesture   string `json:"event_name"`
	Timestamp string `json:"timestamp"`
}

// New creates a Publisher and starts an asynchronous connection to the
// configured broker with exponential-backoff retry.
func New(cfg Config) (*Publisher, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "buttons"
	}

	client, err := mqtt.NewClient(mqtt.Config{
		ServerURL:         cfg.ServerURL,
		ClientID:          cfg.ClientID,
		MaxRetries:        cfg.MaxRetries,
		InitialRetryDelay: cfg.InitialRetryDelay,
		MaxRetryDelay:     cfg.MaxRetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("mqttpublish: %w", err)
	}

	return &Publisher{client: client, cfg: cfg}, nil
}

// Handler returns a controller.Handler that publishes gestureName for
// whatever button it is attached to. Intended for use with Button's
// AddOnPress/AddOnRelease/etc:
//
//	button.AddOnClick(pub.Handler("click"))
func (p *Publisher) Handler(gestureName string) controller.Handler {
	return func(b *controller.Button) {
		if err := p.publish(b.Name, gestureName); err != nil {
			log.Printf("mqttpublish: %v", err)
		}
	}
}

func (p *Publisher) publish(buttonName, gestureName string) error {
	payload, err := json.Marshal(gesturePayload{
		Button:    buttonName,
		Gesture:   gestureName,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal gesture payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%s", p.cfg.TopicPrefix, buttonName, gestureName)
	return p.client.Publish(topic, p.cfg.QoS, p.cfg.Retained, payload)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
