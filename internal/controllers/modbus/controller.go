package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/twozone/internal/ports"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// Register map.
//
//	Coil 0            noise enabled (read/write)
//	Coil 1            rerun trigger (write 1, always reads 0)
//	Holding 0..3      noise seed, uint64 as big-endian words
//	Input   0..3      steady temperatures x100: passive z1, passive z2, forced z1, forced z2
//	Input   4         forced exchange improvement on zone 2 x100
//
// Input registers of a case missing from the report read MissingValue.
const (
	coilCount    = 2
	seedWords    = 4
	inputCount   = 5
	MissingValue = 0x8000
)

// Config for the Modbus controller.
type Config struct {
	DeviceID string
	Addr     string
	UnitID   byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.

	Logger *slog.Logger
}

type Controller struct {
	svc ports.StudyService
	cfg Config
	log *slog.Logger

	serv *mbserver.Server
}

func New(svc ports.StudyService, cfg Config) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{svc: svc, cfg: cfg, log: log.With("controller", "modbus")}, nil
}

// Run starts the Modbus server and registers handlers that apply writes immediately and
// provide reads directly from the study service. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	// Read Coils (function 1)
	serv.RegisterFunctionHandler(1, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		start, qty, exc := readRange(frame.GetData(), 2000, coilCount)
		if exc != nil {
			return []byte{}, exc
		}
		var bits byte
		for i := 0; i < qty; i++ {
			if start+i == 0 && c.svc.Options().Noise.Enabled {
				bits |= 1 << i
			}
		}
		// response: byte count (1) + coil bytes
		return []byte{1, bits}, &mbserver.Success
	})

	// Read Holding Registers (function 3)
	serv.RegisterFunctionHandler(3, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		start, qty, exc := readRange(frame.GetData(), 125, seedWords)
		if exc != nil {
			return []byte{}, exc
		}
		words := seedToWords(c.svc.Options().Noise.Seed)
		return encodeRegisters(words[start : start+qty]), &mbserver.Success
	})

	// Read Input Registers (function 4)
	serv.RegisterFunctionHandler(4, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		start, qty, exc := readRange(frame.GetData(), 125, inputCount)
		if exc != nil {
			return []byte{}, exc
		}
		regs := c.inputRegisters()
		return encodeRegisters(regs[start : start+qty]), &mbserver.Success
	})

	// Write Single Coil (function 5)
	serv.RegisterFunctionHandler(5, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := binary.BigEndian.Uint16(data[0:2])
		value := binary.BigEndian.Uint16(data[2:4])

		var on bool
		switch value {
		case 0x0000:
			on = false
		case 0xFF00:
			on = true
		default:
			return []byte{}, &mbserver.IllegalDataValue
		}

		var err error
		switch addr {
		case 0:
			err = c.svc.SetNoise(ctx, on)
		case 1:
			if on {
				err = c.svc.Rerun(ctx)
			}
		default:
			return []byte{}, &mbserver.IllegalDataAddress
		}
		if err != nil {
			c.log.Warn("coil write rejected", "addr", addr, "err", err)
			return []byte{}, &mbserver.SlaveDeviceFailure
		}

		// echo request (address + value)
		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Single Register (function 6)
	serv.RegisterFunctionHandler(6, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := int(binary.BigEndian.Uint16(data[0:2]))
		value := binary.BigEndian.Uint16(data[2:4])
		if addr >= seedWords {
			return []byte{}, &mbserver.IllegalDataAddress
		}

		words := seedToWords(c.svc.Options().Noise.Seed)
		words[addr] = value
		if exc := c.writeSeed(ctx, words); exc != nil {
			return []byte{}, exc
		}

		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Multiple Registers (function 16)
	serv.RegisterFunctionHandler(16, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		d := frame.GetData()
		if len(d) < 5 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(d[0:2])
		quantity := binary.BigEndian.Uint16(d[2:4])
		byteCount := int(d[4])
		if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
			return []byte{}, &mbserver.IllegalDataValue
		}
		if quantity == 0 || int(start)+int(quantity) > seedWords {
			return []byte{}, &mbserver.IllegalDataAddress
		}

		words := seedToWords(c.svc.Options().Noise.Seed)
		for i := 0; i < int(quantity); i++ {
			words[int(start)+i] = binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		}
		if exc := c.writeSeed(ctx, words); exc != nil {
			return []byte{}, exc
		}

		resp := make([]byte, 4)
		binary.BigEndian.PutUint16(resp[0:2], start)
		binary.BigEndian.PutUint16(resp[2:4], quantity)
		return resp, &mbserver.Success
	})

	// Now start listening after all handlers are registered.
	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info("listening", "addr", c.cfg.Addr, "unit_id", c.cfg.UnitID)

	// Block until ctx.Done()
	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

func (c *Controller) writeSeed(ctx context.Context, words [seedWords]uint16) *mbserver.Exception {
	if err := c.svc.SetSeed(ctx, wordsToSeed(words)); err != nil {
		c.log.Warn("seed write rejected", "err", err)
		return &mbserver.SlaveDeviceFailure
	}
	return nil
}

func (c *Controller) inputRegisters() [inputCount]uint16 {
	r := c.svc.Report()
	regs := [inputCount]uint16{MissingValue, MissingValue, MissingValue, MissingValue, MissingValue}
	if s, ok := r.Summaries[thermal.CasePassive]; ok {
		regs[0], regs[1] = encodeTemp(s.Zone1), encodeTemp(s.Zone2)
	}
	if s, ok := r.Summaries[thermal.CaseForced]; ok {
		regs[2], regs[3] = encodeTemp(s.Zone1), encodeTemp(s.Zone2)
	}
	if delta, ok := r.Improvement(); ok {
		regs[4] = encodeTemp(delta)
	}
	return regs
}

// readRange decodes the start/quantity header of a read request and checks it
// against the number of exposed addresses.
func readRange(data []byte, maxQty, size int) (start, qty int, exc *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start = int(binary.BigEndian.Uint16(data[0:2]))
	qty = int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > maxQty {
		return 0, 0, &mbserver.IllegalDataValue
	}
	if start+qty > size {
		return 0, 0, &mbserver.IllegalDataAddress
	}
	return start, qty, nil
}

// encodeRegisters builds a read response: byte count + register bytes.
func encodeRegisters(regs []uint16) []byte {
	byteCount := len(regs) * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}

func seedToWords(seed uint64) [seedWords]uint16 {
	var w [seedWords]uint16
	for i := range w {
		w[i] = uint16(seed >> (16 * (seedWords - 1 - i)))
	}
	return w
}

func wordsToSeed(w [seedWords]uint16) uint64 {
	var seed uint64
	for _, v := range w {
		seed = seed<<16 | uint64(v)
	}
	return seed
}

const TemperatureScale int = 100

// encodeTemp clamps to the int16 range, keeping MissingValue for absent data.
func encodeTemp(v float64) uint16 {
	r := min(max(int(math.Round(v*float64(TemperatureScale))), math.MinInt16+1), math.MaxInt16)
	return uint16(int16(r))
}

func decodeTemp(u uint16) float64 {
	i := int16(u)
	return float64(i) / float64(TemperatureScale)
}
