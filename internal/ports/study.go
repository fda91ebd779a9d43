package ports

import (
	"context"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// StudyService is the control-plane port used by controllers (HTTP/MQTT/etc).
type StudyService interface {
	Report() *study.Report
	Options() study.Options
	Params() thermal.Params
	SetNoise(ctx context.Context, on bool) error
	SetSeed(ctx context.Context, seed uint64) error
	Rerun(ctx context.Context) error
}
