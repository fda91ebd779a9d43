package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Agrid-Dev/twozone/internal/ports"
	"github.com/Agrid-Dev/twozone/internal/report"
)

type Config struct {
	// Identity
	DeviceID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSummary   bool
	PublishInterval time.Duration

	Username string
	Password string

	Logger *slog.Logger
}

type Controller struct {
	svc ports.StudyService
	cfg Config
	log *slog.Logger

	client mqtt.Client
	ctx    context.Context
}

func New(svc ports.StudyService, cfg Config) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.DeviceID == "" {
		return nil, errors.New("mqtt: DeviceID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "twozone/" + cfg.DeviceID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "twozone-" + cfg.DeviceID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: log.With("controller", "mqtt"),
		ctx: context.Background(),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx

	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/+")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Warn("subscribe failed", "topic", topic, "err", err)
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.log.Info("connected", "broker", c.cfg.BrokerURL, "base_topic", c.cfg.BaseTopic)

	// Publish loop: publish the summary on interval, and only when the report changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	// publish immediately once
	last := c.publishSummary()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			if cur := c.svc.Report(); cur.ID != last {
				last = c.publishSummary()
			}
		}
	}
}

// publishSummary publishes the current report and returns its id.
func (c *Controller) publishSummary() uuid.UUID {
	r := c.svc.Report()
	b, err := json.Marshal(report.NewReportDTO(c.cfg.DeviceID, r))
	if err != nil {
		c.log.Error("encode summary", "err", err)
		return r.ID
	}
	c.client.Publish(c.topic("summary"), c.cfg.QoS, c.cfg.RetainSummary, b)
	return r.ID
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := strings.TrimRight(c.cfg.BaseTopic, "/") + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	payload := msg.Payload()

	var err error

	// Dispatch by field
	switch field {
	case "noise":
		var v bool
		if v, err = decodeValueStrict[bool](payload); err == nil {
			err = c.svc.SetNoise(c.ctx, v)
		}

	case "seed":
		var v uint64
		if v, err = decodeValueStrict[uint64](payload); err == nil {
			err = c.svc.SetSeed(c.ctx, v)
		}

	case "rerun":
		err = c.svc.Rerun(c.ctx)

	default:
		return
	}

	if err != nil {
		c.log.Warn("command rejected", "field", field, "err", err)
	}
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
