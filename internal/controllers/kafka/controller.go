package kafkactrl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Agrid-Dev/twozone/internal/ports"
	"github.com/Agrid-Dev/twozone/internal/report"
	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

type Config struct {
	DeviceID string

	Brokers []string
	Topic   string

	PublishInterval time.Duration

	Logger *slog.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Controller publishes one record per case summary whenever the report changes.
type Controller struct {
	svc    ports.StudyService
	cfg    Config
	log    *slog.Logger
	writer messageWriter
}

// summaryMessage is the value of every record; the key is the case name.
type summaryMessage struct {
	DeviceID  string            `json:"device_id"`
	ReportID  string            `json:"report_id"`
	CreatedAt time.Time         `json:"created_at"`
	Summary   report.SummaryDTO `json:"summary"`
}

func New(svc ports.StudyService, cfg Config) (*Controller, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newWithWriter(svc, cfg, w)
}

// newWithWriter applies defaults and wires the provided writer. It is used in tests.
func newWithWriter(svc ports.StudyService, cfg Config, w messageWriter) (*Controller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("kafka: DeviceID is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "twozone.summaries"
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if kw, ok := w.(*kafka.Writer); ok && kw.Topic == "" {
		kw.Topic = cfg.Topic
	}
	return &Controller{
		svc:    svc,
		cfg:    cfg,
		log:    log.With("controller", "kafka", "topic", cfg.Topic),
		writer: w,
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if err := c.writer.Close(); err != nil {
			c.log.Warn("writer close", "err", err)
		}
	}()

	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	var last uuid.UUID
	publish := func() {
		r := c.svc.Report()
		if r.ID == last {
			return
		}
		if err := c.publish(ctx, r); err != nil {
			// retried on the next tick
			c.log.Warn("publish failed", "report_id", r.ID.String(), "err", err)
			return
		}
		last = r.ID
	}

	publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			publish()
		}
	}
}

func (c *Controller) publish(ctx context.Context, r *study.Report) error {
	msgs, err := c.messages(r)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := c.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	c.log.Info("summaries published", "report_id", r.ID.String(), "count", len(msgs))
	return nil
}

func (c *Controller) messages(r *study.Report) ([]kafka.Message, error) {
	var msgs []kafka.Message
	for _, cs := range thermal.Cases() {
		s, ok := r.Summaries[cs]
		if !ok {
			continue
		}
		value, err := json.Marshal(summaryMessage{
			DeviceID:  c.cfg.DeviceID,
			ReportID:  r.ID.String(),
			CreatedAt: r.CreatedAt,
			Summary:   report.NewSummaryDTO(s),
		})
		if err != nil {
			return nil, fmt.Errorf("encode %s summary: %w", cs, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(cs.String()),
			Value: value,
			Headers: []kafka.Header{
				{Key: "device_id", Value: []byte(c.cfg.DeviceID)},
				{Key: "report_id", Value: []byte(r.ID.String())},
			},
			Time: r.CreatedAt,
		})
	}
	return msgs, nil
}
