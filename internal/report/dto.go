package report

import (
	"time"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

type SummaryDTO struct {
	RunID        string  `json:"run_id"`
	Case         string  `json:"case"`
	Window       int     `json:"window"`
	Zone1        float64 `json:"zone1_steady"`
	Zone2        float64 `json:"zone2_steady"`
	Zone1Band    float64 `json:"zone1_band"`
	Zone2Band    float64 `json:"zone2_band"`
	NoiseApplied bool    `json:"noise_applied"`
}

func NewSummaryDTO(s thermal.Summary) SummaryDTO {
	return SummaryDTO{
		RunID:        s.RunID.String(),
		Case:         s.Case.String(),
		Window:       s.Window,
		Zone1:        s.Zone1,
		Zone2:        s.Zone2,
		Zone1Band:    s.Zone1Band,
		Zone2Band:    s.Zone2Band,
		NoiseApplied: s.NoiseApplied,
	}
}

type OptionsDTO struct {
	Cases        []string `json:"cases"`
	NoiseEnabled bool     `json:"noise_enabled"`
	NoiseStdDev  float64  `json:"noise_stddev"`
	Seed         uint64   `json:"seed"`
	Window       int      `json:"window"`
}

func NewOptionsDTO(o study.Options) OptionsDTO {
	cases := make([]string, len(o.Cases))
	for i, c := range o.Cases {
		cases[i] = c.String()
	}
	return OptionsDTO{
		Cases:        cases,
		NoiseEnabled: o.Noise.Enabled,
		NoiseStdDev:  o.Noise.StdDev,
		Seed:         o.Noise.Seed,
		Window:       o.Window,
	}
}

// ReportDTO is the wire shape of a report shared by every transport.
type ReportDTO struct {
	DeviceID    string       `json:"device_id"`
	ReportID    string       `json:"report_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Options     OptionsDTO   `json:"options"`
	Summaries   []SummaryDTO `json:"summaries"`
	Improvement *float64     `json:"improvement,omitempty"`
}

// NewReportDTO lists summaries in case order.
func NewReportDTO(deviceID string, r *study.Report) ReportDTO {
	dto := ReportDTO{
		DeviceID:  deviceID,
		ReportID:  r.ID.String(),
		CreatedAt: r.CreatedAt,
		Options:   NewOptionsDTO(r.Options),
		Summaries: []SummaryDTO{},
	}
	for _, c := range thermal.Cases() {
		if s, ok := r.Summaries[c]; ok {
			dto.Summaries = append(dto.Summaries, NewSummaryDTO(s))
		}
	}
	if delta, ok := r.Improvement(); ok {
		dto.Improvement = &delta
	}
	return dto
}

type ParamsDTO struct {
	DTSeconds       float64 `json:"dt_s"`
	DurationSeconds float64 `json:"duration_s"`
	Steps           int     `json:"steps"`
	Ambient         float64 `json:"ambient_temperature"`
	Initial         float64 `json:"initial_temperature"`
	Zone1C          float64 `json:"zone1_capacitance"`
	Zone2C          float64 `json:"zone2_capacitance"`

	Passive NetworkDTO `json:"passive"`
	Forced  NetworkDTO `json:"forced"`

	Setpoint        float64 `json:"setpoint"`
	MaxOutput       float64 `json:"max_output"`
	Gain            float64 `json:"gain"`
	MinActiveOutput float64 `json:"min_active_output"`
}

type NetworkDTO struct {
	WallResistance1 float64 `json:"wall_resistance_1"`
	WallResistance2 float64 `json:"wall_resistance_2"`
	Conductance     float64 `json:"conductance"`
	AuxiliaryHeat   float64 `json:"auxiliary_heat"`
}

func newNetworkDTO(n thermal.CouplingNetwork) NetworkDTO {
	return NetworkDTO{
		WallResistance1: n.WallResistance1,
		WallResistance2: n.WallResistance2,
		Conductance:     n.Conductance,
		AuxiliaryHeat:   n.AuxiliaryHeat,
	}
}

func NewParamsDTO(p thermal.Params) ParamsDTO {
	return ParamsDTO{
		DTSeconds:       p.DT.Seconds(),
		DurationSeconds: p.Duration.Seconds(),
		Steps:           p.Steps(),
		Ambient:         p.Ambient,
		Initial:         p.Initial,
		Zone1C:          p.Zone1.Capacitance,
		Zone2C:          p.Zone2.Capacitance,
		Passive:         newNetworkDTO(p.Passive),
		Forced:          newNetworkDTO(p.Forced),
		Setpoint:        p.Regulator.Setpoint,
		MaxOutput:       p.Regulator.MaxOutput,
		Gain:            p.Regulator.Gain,
		MinActiveOutput: p.Regulator.MinActiveOutput,
	}
}

type RunDTO struct {
	RunID        string    `json:"run_id"`
	Case         string    `json:"case"`
	DTSeconds    float64   `json:"dt_s"`
	NoiseApplied bool      `json:"noise_applied"`
	Zone1        []float64 `json:"zone1"`
	Zone2        []float64 `json:"zone2"`
	Cooling      []float64 `json:"cooling"`
}

func NewRunDTO(r *thermal.Run) RunDTO {
	return RunDTO{
		RunID:        r.ID.String(),
		Case:         r.Case.String(),
		DTSeconds:    r.DT.Seconds(),
		NoiseApplied: r.NoiseApplied,
		Zone1:        r.Zone1,
		Zone2:        r.Zone2,
		Cooling:      r.Cooling,
	}
}
