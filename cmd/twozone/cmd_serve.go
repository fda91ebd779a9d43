package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/twozone/cmd/app"
	httpctrl "github.com/Agrid-Dev/twozone/internal/controllers/http"
	kafkactrl "github.com/Agrid-Dev/twozone/internal/controllers/kafka"
	modbusctrl "github.com/Agrid-Dev/twozone/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/twozone/internal/controllers/mqtt"
	"github.com/Agrid-Dev/twozone/internal/ports"
	"github.com/Agrid-Dev/twozone/internal/study"
)

type runner interface {
	Run(ctx context.Context) error
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Compute the study and expose it through the enabled controllers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := cfg.Params()
			if err != nil {
				return fmt.Errorf("invalid parameters: %w", err)
			}
			opts, err := cfg.Options()
			if err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, err := study.NewService(ctx, cfg.DeviceID, p, opts, log)
			if err != nil {
				return fmt.Errorf("initial study: %w", err)
			}

			runners, err := buildControllers(cfg, svc, log)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			for name, r := range runners {
				log.Info("controller starting", "controller", name)
				g.Go(func() error {
					if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						return fmt.Errorf("%s controller: %w", name, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			log.Info("shutdown complete")
			return nil
		},
	}
}

// buildControllers returns every enabled controller keyed by name.
func buildControllers(cfg app.Config, svc ports.StudyService, log *slog.Logger) (map[string]runner, error) {
	ctrl := cfg.Controllers
	out := map[string]runner{}

	if ctrl.HTTP.Enabled {
		out["http"] = httpctrl.New(svc, ctrl.HTTP.Addr, cfg.DeviceID)
	}
	if ctrl.MQTT.Enabled {
		c, err := mqttctrl.New(svc, mqttctrl.Config{
			DeviceID:        cfg.DeviceID,
			BrokerURL:       ctrl.MQTT.BrokerURL,
			ClientID:        ctrl.MQTT.ClientID,
			BaseTopic:       ctrl.MQTT.BaseTopic,
			QoS:             ctrl.MQTT.QoS,
			RetainSummary:   ctrl.MQTT.RetainSummary,
			PublishInterval: ctrl.MQTT.PublishInterval,
			Username:        ctrl.MQTT.Username,
			Password:        ctrl.MQTT.Password,
			Logger:          log,
		})
		if err != nil {
			return nil, err
		}
		out["mqtt"] = c
	}
	if ctrl.MODBUS.Enabled {
		c, err := modbusctrl.New(svc, modbusctrl.Config{
			DeviceID: cfg.DeviceID,
			Addr:     ctrl.MODBUS.Addr,
			UnitID:   ctrl.MODBUS.UnitID,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		out["modbus"] = c
	}
	if ctrl.Kafka.Enabled {
		c, err := kafkactrl.New(svc, kafkactrl.Config{
			DeviceID:        cfg.DeviceID,
			Brokers:         ctrl.Kafka.Brokers,
			Topic:           ctrl.Kafka.Topic,
			PublishInterval: ctrl.Kafka.PublishInterval,
			Logger:          log,
		})
		if err != nil {
			return nil, err
		}
		out["kafka"] = c
	}
	return out, nil
}
