package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// EnvPrefix marks environment variables that override the config file.
const EnvPrefix = "TWOZONE_"

type Config struct {
	DeviceID string `koanf:"device_id" yaml:"device_id"`

	Simulation SimulationConfig `koanf:"simulation" yaml:"simulation"`
	Air        AirConfig        `koanf:"air" yaml:"air"`
	Zones      ZonesConfig      `koanf:"zones" yaml:"zones"`
	Coupling   CouplingConfig   `koanf:"coupling" yaml:"coupling"`
	Regulator  RegulatorConfig  `koanf:"regulator" yaml:"regulator"`
	Noise      NoiseConfig      `koanf:"noise" yaml:"noise"`
	Reducer    ReducerConfig    `koanf:"reducer" yaml:"reducer"`
	Output     OutputConfig     `koanf:"output" yaml:"output"`

	Controllers ControllersConfig `koanf:"controllers" yaml:"controllers"`
}

type SimulationConfig struct {
	DT                 time.Duration `koanf:"dt" yaml:"dt"`
	Duration           time.Duration `koanf:"duration" yaml:"duration"`
	AmbientTemperature float64       `koanf:"ambient_temperature" yaml:"ambient_temperature"`
	InitialTemperature float64       `koanf:"initial_temperature" yaml:"initial_temperature"`
	Cases              []string      `koanf:"cases" yaml:"cases"`
}

type AirConfig struct {
	Density      float64 `koanf:"density" yaml:"density"`             // kg/m3
	SpecificHeat float64 `koanf:"specific_heat" yaml:"specific_heat"` // J/kg.K
}

type ZoneConfig struct {
	Volume         float64 `koanf:"volume" yaml:"volume"`                   // m3
	WallResistance float64 `koanf:"wall_resistance" yaml:"wall_resistance"` // K/W
}

type ZonesConfig struct {
	Small ZoneConfig `koanf:"small" yaml:"small"` // regulated zone
	Large ZoneConfig `koanf:"large" yaml:"large"` // monitored zone
}

type CouplingConfig struct {
	PassiveConductance float64 `koanf:"passive_conductance" yaml:"passive_conductance"`
	ForcedAirflowCMH   float64 `koanf:"forced_airflow_cmh" yaml:"forced_airflow_cmh"`
	// ForcedConductance overrides the value derived from the airflow when > 0.
	ForcedConductance float64 `koanf:"forced_conductance" yaml:"forced_conductance"`
	FanHeat           float64 `koanf:"fan_heat" yaml:"fan_heat"`
}

type RegulatorConfig struct {
	Setpoint        float64 `koanf:"setpoint" yaml:"setpoint"`
	MaxOutput       float64 `koanf:"max_output" yaml:"max_output"`
	Gain            float64 `koanf:"gain" yaml:"gain"`
	MinActiveOutput float64 `koanf:"min_active_output" yaml:"min_active_output"`
}

type NoiseConfig struct {
	Enabled bool    `koanf:"enabled" yaml:"enabled"`
	StdDev  float64 `koanf:"stddev" yaml:"stddev"`
	Seed    uint64  `koanf:"seed" yaml:"seed"`
}

type ReducerConfig struct {
	Window int `koanf:"window" yaml:"window"`
}

type OutputConfig struct {
	CSVDir   string `koanf:"csv_dir" yaml:"csv_dir"`
	PlotPath string `koanf:"plot_path" yaml:"plot_path"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http" yaml:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt" yaml:"mqtt"`
	MODBUS ModbusConfig `koanf:"modbus" yaml:"modbus"`
	Kafka  KafkaConfig  `koanf:"kafka" yaml:"kafka"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled" yaml:"enabled"`
	BrokerURL       string        `koanf:"broker_url" yaml:"broker_url"`
	ClientID        string        `koanf:"client_id" yaml:"client_id"`
	BaseTopic       string        `koanf:"base_topic" yaml:"base_topic"`
	QoS             byte          `koanf:"qos" yaml:"qos"`
	RetainSummary   bool          `koanf:"retain_summary" yaml:"retain_summary"`
	PublishInterval time.Duration `koanf:"publish_interval" yaml:"publish_interval"`
	Username        string        `koanf:"username" yaml:"username"`
	Password        string        `koanf:"password" yaml:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
	UnitID  byte   `koanf:"unit_id" yaml:"unit_id"`
}

type KafkaConfig struct {
	Enabled         bool          `koanf:"enabled" yaml:"enabled"`
	Brokers         []string      `koanf:"brokers" yaml:"brokers"`
	Topic           string        `koanf:"topic" yaml:"topic"`
	PublishInterval time.Duration `koanf:"publish_interval" yaml:"publish_interval"`
}

// DefaultConfig is the two-room reference scenario: a 35 m3 bedroom with a
// 5.2 kW cooler at 16 C next to a 70 m3 living room, 90 minutes at 1 s.
func DefaultConfig() Config {
	return Config{
		DeviceID: "default",
		Simulation: SimulationConfig{
			DT:                 time.Second,
			Duration:           90 * time.Minute,
			AmbientTemperature: 30.0,
			InitialTemperature: 28.0,
			Cases:              []string{"passive", "forced"},
		},
		Air: AirConfig{Density: 1.225, SpecificHeat: 1005.0},
		Zones: ZonesConfig{
			Small: ZoneConfig{Volume: 35, WallResistance: 0.020},
			Large: ZoneConfig{Volume: 70, WallResistance: 0.011},
		},
		Coupling: CouplingConfig{
			PassiveConductance: 35.0,
			ForcedAirflowCMH:   200,
			FanHeat:            40.0,
		},
		Regulator: RegulatorConfig{
			Setpoint:        16.0,
			MaxOutput:       5200.0,
			Gain:            2.0,
			MinActiveOutput: 800.0,
		},
		Noise:   NoiseConfig{Enabled: true, StdDev: thermal.DefaultNoiseStdDev, Seed: 1},
		Reducer: ReducerConfig{Window: thermal.DefaultWindow},
		Controllers: ControllersConfig{
			HTTP:   HTTPConfig{Addr: ":8080"},
			MQTT:   MQTTConfig{PublishInterval: time.Second},
			MODBUS: ModbusConfig{Addr: "127.0.0.1:1502", UnitID: 1},
			Kafka:  KafkaConfig{Topic: "twozone.summaries", PublishInterval: time.Second},
		},
	}
}

// LoadConfig layers defaults, the optional file at path and TWOZONE_*
// environment variables, in that order. A missing file means defaults.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.DeviceID == "" {
		cfg.DeviceID = "default"
	}
	// Explicit addr preferred, else support PORT (common in containers).
	if os.Getenv(EnvPrefix+"CONTROLLERS_HTTP_ADDR") == "" {
		if v := os.Getenv("PORT"); v != "" {
			cfg.Controllers.HTTP.Addr = ":" + v
		}
	}
	if cfg.Controllers.HTTP.Addr == "" {
		cfg.Controllers.HTTP.Addr = ":8080"
	}
	ctrl := cfg.Controllers
	if !ctrl.HTTP.Enabled && !ctrl.MQTT.Enabled && !ctrl.MODBUS.Enabled && !ctrl.Kafka.Enabled {
		cfg.Controllers.HTTP.Enabled = true
	}
	if cfg.Controllers.MQTT.PublishInterval == 0 {
		cfg.Controllers.MQTT.PublishInterval = 1 * time.Second
	}
	if cfg.Controllers.MODBUS.UnitID == 0 {
		cfg.Controllers.MODBUS.UnitID = 1
	}
}

// nestedSections hold one more level of named sub-sections below them.
var nestedSections = map[string]bool{
	"controllers": true,
	"zones":       true,
}

var sections = map[string]bool{
	"simulation": true,
	"air":        true,
	"coupling":   true,
	"regulator":  true,
	"noise":      true,
	"reducer":    true,
	"output":     true,
}

// envKeyTransform maps SECTION_FIELD to section.field and
// CONTROLLERS_NAME_FIELD (or ZONES_NAME_FIELD) to controllers.name.field.
// Anything else is lower-cased as a top-level key.
func envKeyTransform(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return ""
	}

	parts := strings.Split(k, "_")
	head := parts[0]

	if nestedSections[head] {
		if len(parts) < 3 {
			return k
		}
		return head + "." + parts[1] + "." + strings.Join(parts[2:], "_")
	}
	if sections[head] {
		if len(parts) < 2 {
			return k
		}
		return head + "." + strings.Join(parts[1:], "_")
	}
	return k
}

// Params derives the immutable simulation parameters.
func (c Config) Params() (thermal.Params, error) {
	air := c.Air
	forced := c.Coupling.ForcedConductance
	if forced <= 0 {
		forced = thermal.AirflowConductance(c.Coupling.ForcedAirflowCMH, air.Density, air.SpecificHeat)
	}

	p := thermal.Params{
		DT:       c.Simulation.DT,
		Duration: c.Simulation.Duration,
		Ambient:  c.Simulation.AmbientTemperature,
		Initial:  c.Simulation.InitialTemperature,
		Zone1:    thermal.Zone{Capacitance: thermal.AirCapacitance(air.Density, c.Zones.Small.Volume, air.SpecificHeat)},
		Zone2:    thermal.Zone{Capacitance: thermal.AirCapacitance(air.Density, c.Zones.Large.Volume, air.SpecificHeat)},
		Passive: thermal.CouplingNetwork{
			WallResistance1: c.Zones.Small.WallResistance,
			WallResistance2: c.Zones.Large.WallResistance,
			Conductance:     c.Coupling.PassiveConductance,
		},
		Forced: thermal.CouplingNetwork{
			WallResistance1: c.Zones.Small.WallResistance,
			WallResistance2: c.Zones.Large.WallResistance,
			Conductance:     forced,
			AuxiliaryHeat:   c.Coupling.FanHeat,
		},
		Regulator: thermal.RegulatorParams{
			Setpoint:        c.Regulator.Setpoint,
			MaxOutput:       c.Regulator.MaxOutput,
			Gain:            c.Regulator.Gain,
			MinActiveOutput: c.Regulator.MinActiveOutput,
		},
	}
	if err := p.Validate(); err != nil {
		return thermal.Params{}, err
	}
	return p, nil
}

// Options derives the study options, parsing the configured case names.
func (c Config) Options() (study.Options, error) {
	cases := make([]thermal.Case, 0, len(c.Simulation.Cases))
	for _, name := range c.Simulation.Cases {
		if strings.TrimSpace(name) == "" {
			continue
		}
		cs, err := thermal.ParseCase(strings.TrimSpace(name))
		if err != nil {
			return study.Options{}, &thermal.ConfigError{Field: "simulation.cases", Err: err}
		}
		cases = append(cases, cs)
	}
	o := study.Options{
		Cases: cases,
		Noise: study.NoiseOptions{
			Enabled: c.Noise.Enabled,
			StdDev:  c.Noise.StdDev,
			Seed:    c.Noise.Seed,
		},
		Window: c.Reducer.Window,
	}
	if err := o.Validate(); err != nil {
		return study.Options{}, err
	}
	return o, nil
}
