package locate

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTProvider consumes positions relayed by a companion device over MQTT.
// Payloads on the position topic are either readings or error envelopes, so
// the device can report its own sensing failures (permission denial
// included). A retained message on the permission topic backs the optional
// permission query.
type MQTTProvider struct {
	broker   string
	clientID string
	topic    string

	newClient func(opts *mqtt.ClientOptions) mqtt.Client

	mu     sync.Mutex
	client mqtt.Client
}

func NewMQTTProvider(broker, clientID, topic string) *MQTTProvider {
	return &MQTTProvider{
		broker:    broker,
		clientID:  clientID,
		topic:     topic,
		newClient: mqtt.NewClient,
	}
}

// wirePosition is the companion-device payload: either coordinates or an
// error envelope naming a classification kind.
type wirePosition struct {
	Lat     *float64  `json:"lat"`
	Lng     *float64  `json:"lng"`
	Time    time.Time `json:"time"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

// decodePayload turns one wire message into a reading or a classified error.
func decodePayload(payload []byte) (Reading, *Error) {
	var w wirePosition
	if err := json.Unmarshal(payload, &w); err != nil {
		return Reading{}, &Error{Kind: KindUnknown, Message: "bad position payload: " + err.Error()}
	}
	if w.Error != "" {
		kind := Kind(w.Error)
		switch kind {
		case KindPermissionDenied, KindPositionUnavailable, KindTimeout, KindUnsupported:
		default:
			kind = KindUnknown
		}
		msg := w.Message
		if msg == "" {
			msg = "device reported " + w.Error
		}
		return Reading{}, &Error{Kind: kind, Message: msg}
	}
	if w.Lat == nil || w.Lng == nil {
		return Reading{}, &Error{Kind: KindUnknown, Message: "position payload missing coordinates"}
	}
	ts := w.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return Reading{Lat: *w.Lat, Lng: *w.Lng, Time: ts}, nil
}

// Current subscribes to the position topic and returns the first live
// reading, bounded by the request timeout.
func (p *MQTTProvider) Current(ctx context.Context, opts Options) (Reading, error) {
	client, cerr := p.connected(opts.EffectiveTimeout())
	if cerr != nil {
		return Reading{}, cerr
	}

	ctx, cancel := context.WithTimeout(ctx, opts.EffectiveTimeout())
	defer cancel()

	got := make(chan Reading, 1)
	fail := make(chan *Error, 1)
	token := client.Subscribe(p.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if msg.Retained() && opts.MaxStaleness == 0 {
			return
		}
		r, derr := decodePayload(msg.Payload())
		if derr != nil {
			select {
			case fail <- derr:
			default:
			}
			return
		}
		select {
		case got <- r:
		default:
		}
	})
	if cerr := waitToken(token, opts.EffectiveTimeout()); cerr != nil {
		return Reading{}, cerr
	}
	defer client.Unsubscribe(p.topic)

	select {
	case r := <-got:
		return r, nil
	case derr := <-fail:
		return Reading{}, derr
	case <-ctx.Done():
		return Reading{}, Classify(ctx.Err())
	}
}

// Watch subscribes to the position topic and pumps readings until the
// subscription is cancelled.
func (p *MQTTProvider) Watch(opts Options) (*Subscription, error) {
	client, cerr := p.connected(opts.EffectiveTimeout())
	if cerr != nil {
		return nil, cerr
	}

	sub := NewSubscription(func() {
		tok := client.Unsubscribe(p.topic)
		tok.WaitTimeout(time.Second)
	})
	token := client.Subscribe(p.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if msg.Retained() && opts.MaxStaleness == 0 {
			return
		}
		r, derr := decodePayload(msg.Payload())
		if derr != nil {
			sub.PublishError(derr)
			return
		}
		sub.Publish(r)
	})
	if cerr := waitToken(token, opts.EffectiveTimeout()); cerr != nil {
		return nil, cerr
	}
	return sub, nil
}

// Permission reads the retained permission topic. Implements the optional
// PermissionQuerier capability.
func (p *MQTTProvider) Permission(ctx context.Context) (string, error) {
	client, cerr := p.connected(DefaultTimeout)
	if cerr != nil {
		return "", cerr
	}

	permTopic := p.topic + "/permission"
	got := make(chan string, 1)
	token := client.Subscribe(permTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		select {
		case got <- strings.TrimSpace(string(msg.Payload())):
		default:
		}
	})
	if cerr := waitToken(token, DefaultTimeout); cerr != nil {
		return "", cerr
	}
	defer client.Unsubscribe(permTopic)

	select {
	case status := <-got:
		return status, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *MQTTProvider) connected(timeout time.Duration) (mqtt.Client, *Error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.client.IsConnected() {
		return p.client, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(p.broker).
		SetClientID(p.clientID).
		SetAutoReconnect(true)

	client := p.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, &Error{Kind: KindTimeout, Message: "mqtt broker connect timed out"}
	}
	if err := token.Error(); err != nil {
		return nil, &Error{Kind: KindUnsupported, Message: "mqtt broker unreachable: " + err.Error()}
	}
	p.client = client
	return client, nil
}

func waitToken(token mqtt.Token, timeout time.Duration) *Error {
	if !token.WaitTimeout(timeout) {
		return &Error{Kind: KindTimeout, Message: "mqtt subscribe timed out"}
	}
	if err := token.Error(); err != nil {
		return &Error{Kind: KindUnknown, Message: "mqtt subscribe failed: " + err.Error()}
	}
	return nil
}
