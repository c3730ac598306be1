package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/meteo-station/internal/config"
	"github.com/i474232898/meteo-station/internal/station"
)

const publishTimeout = 5 * time.Second

var (
	errNotConnected  = errors.New("mqtt client not connected")
	errClientStopped = errors.New("mqtt client stopped")
)

// MQTTPublisher publishes every stored reading as JSON to a single topic.
type MQTTPublisher struct {
	client    mqtt.Client
	topic     string
	broker    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMQTTPublisher configures a client for cfg.MQTTBroker. It does not connect.
func NewMQTTPublisher(cfg *config.AppConfig, logger *slog.Logger) *MQTTPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &MQTTPublisher{
		topic:  cfg.MQTTTopic,
		broker: fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
		logger: logger.With("sink", "mqtt"),
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.broker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		p.logger.Info("mqtt connected", "broker", p.broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Name implements station.Sink.
func (p *MQTTPublisher) Name() string {
	return "mqtt"
}

// Connect waits for the initial connection until ctx is done or Close is called.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errClientStopped
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errClientStopped
		default:
		}
	}
}

// Publish sends r at QoS 1.
func (p *MQTTPublisher) Publish(ctx context.Context, r station.Reading) error {
	if !p.IsConnected() {
		return errNotConnected
	}

	data, err := encodeReading(r)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, false, data)

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish reading: %w", err)
	}

	p.logger.Debug("published reading", "topic", p.topic, "id", r.ID)
	return nil
}

// IsConnected returns whether the client is connected.
func (p *MQTTPublisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Close disconnects from the broker. Idempotent; Connect fails afterwards.
func (p *MQTTPublisher) Close() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.client.Disconnect(250)
		p.setConnected(false)
		p.logger.Info("mqtt disconnected")
	})
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// encodeReading renders r in its HTTP API shape; the payload is embedded as
// JSON, not as an escaped string.
func encodeReading(r station.Reading) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal reading: %w", err)
	}
	return data, nil
}
