package pump

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/internal/pool"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/logger"
)

// disPattern matches the DIS reply: cumulative infused and withdrawn
// volumes plus the volume units, e.g. "I1.234W0UL".
var disPattern = regexp.MustCompile(`^I([0-9.]+)W([0-9.]+)(UL|ML)$`)

// Pump drives one New Era syringe pump. Requests are serialized so every
// reply is drained by the request that provoked it.
type Pump struct {
	cfg *Config
	log logger.Logger

	mu        sync.Mutex
	transport Transport
	connected bool

	metrics PumpMetrics
}

// NewPump creates a pump driver for cfg. transport may be nil, in which
// case Connect opens the configured serial port; pass a SimTransport to run
// against the simulator.
func NewPump(cfg *Config, transport Transport) *Pump {
	return &Pump{
		cfg:       cfg,
		log:       cfg.GetLogger(),
		transport: transport,
	}
}

// Metrics returns the pump's metrics.
func (p *Pump) Metrics() *PumpMetrics { return &p.metrics }

// Connect opens the link, absorbs the power-reset alarm a freshly powered
// pump reports, and programs the syringe diameter and microliter volume
// units.
func (p *Pump) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		return nil
	}
	if p.transport == nil {
		t, err := OpenSerial(p.cfg.Port(), p.cfg.BaudRate())
		if err != nil {
			return err
		}
		p.transport = t
	}
	p.connected = true

	if _, _, err := p.transceiveLocked(""); err != nil {
		var alarm *AlarmError
		if !errors.As(err, &alarm) || alarm.Code != alarmResetCode {
			return err
		}
		p.log.Debug("power-reset alarm absorbed")
		if _, _, err := p.transceiveLocked(""); err != nil {
			return err
		}
	}

	if _, _, err := p.transceiveLocked("DIA" + formatFloat(p.cfg.Diameter())); err != nil {
		return err
	}
	if _, _, err := p.transceiveLocked("VOLUL"); err != nil {
		return err
	}

	p.log.Info("pump connected", "port", p.cfg.Port(),
		"address", p.cfg.Address(), "diameter", p.cfg.Diameter())

	return nil
}

// Status queries the pump's operational state.
func (p *Pump) Status() (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, _, err := p.transceiveLocked("")
	return status, err
}

// Infuse dispenses volume microliters at rate mL/min and returns the volume
// the pump reports it moved.
func (p *Pump) Infuse(volume, rate float64) (float64, error) {
	return p.pump(DirectionInfuse, volume, rate)
}

// Withdraw aspirates volume microliters at rate mL/min and returns the
// volume the pump reports it moved.
func (p *Pump) Withdraw(volume, rate float64) (float64, error) {
	return p.pump(DirectionWithdraw, volume, rate)
}

// Stop halts the plunger immediately.
func (p *Pump) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _, err := p.transceiveLocked("STP")
	return err
}

// Dispensed reads the cumulative infused and withdrawn counters, in
// microliters.
func (p *Pump) Dispensed() (infused, withdrawn float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispensedLocked()
}

// ClearDispensed zeroes the cumulative counter for the given direction.
func (p *Pump) ClearDispensed(dir Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _, err := p.transceiveLocked("CLD" + dir.mnemonic())
	return err
}

// Close closes the link. The pump cannot be reused afterwards.
func (p *Pump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return nil
	}
	p.connected = false
	return p.transport.Close()
}

// pump runs one discrete operation: program direction, rate and volume,
// start, poll to completion, read the moved volume and clear the counter.
// No programmed state survives between operations.
func (p *Pump) pump(dir Direction, volume, rate float64) (float64, error) {
	if volume <= 0 {
		return 0, fmt.Errorf("pump: volume %g must be positive", volume)
	}
	if volume >= 10000 {
		return 0, fmt.Errorf("%w: %g uL", ErrVolumeTooLarge, volume)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("pump: rate %g must be positive", rate)
	}
	if max := p.cfg.MaxRate(); max > 0 && rate > max {
		return 0, fmt.Errorf("pump: rate %g exceeds maximum %g mL/min", rate, max)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Info("pumping", "direction", dir.String(), "volume", volume, "rate", rate)

	if _, _, err := p.transceiveLocked("DIR" + dir.mnemonic()); err != nil {
		return 0, err
	}
	if _, _, err := p.transceiveLocked("RAT" + formatFloat(rate) + "MM"); err != nil {
		return 0, err
	}
	if _, _, err := p.transceiveLocked("VOL" + formatFloat(volume)); err != nil {
		return 0, err
	}
	if _, _, err := p.transceiveLocked("RUN"); err != nil {
		return 0, err
	}

	if err := p.waitStoppedLocked(); err != nil {
		return 0, err
	}

	infused, withdrawn, err := p.dispensedLocked()
	if err != nil {
		return 0, err
	}
	moved := infused
	if dir == DirectionWithdraw {
		moved = withdrawn
	}

	if _, _, err := p.transceiveLocked("CLD" + dir.mnemonic()); err != nil {
		return 0, err
	}

	p.log.Info("pumping complete", "direction", dir.String(), "moved", moved)

	return moved, nil
}

// waitStoppedLocked polls the status until the plunger stops moving.
func (p *Pump) waitStoppedLocked() error {
	deadline := time.Now().Add(p.cfg.RunTimeout())
	for {
		status, _, err := p.transceiveLocked("")
		if err != nil {
			return err
		}
		if !status.Running() {
			return nil
		}
		if time.Now().After(deadline) {
			p.metrics.incTimeoutCount()
			// Best effort halt so the plunger is not left moving.
			if _, _, serr := p.transceiveLocked("STP"); serr != nil {
				p.log.Error("stop after run timeout failed", "error", serr)
			}
			return fmt.Errorf("%w: still %s after %v", ErrRunTimeout, status, p.cfg.RunTimeout())
		}

		timer := pool.GetTimer(p.cfg.PollInterval())
		<-timer.C
		pool.PutTimer(timer)
	}
}

func (p *Pump) dispensedLocked() (float64, float64, error) {
	_, result, err := p.transceiveLocked("DIS")
	if err != nil {
		return 0, 0, err
	}
	match := disPattern.FindStringSubmatch(result)
	if match == nil {
		return 0, 0, fmt.Errorf("%w: dispensed report %q", ErrMalformedReply, result)
	}
	infused, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: dispensed report %q", ErrMalformedReply, result)
	}
	withdrawn, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: dispensed report %q", ErrMalformedReply, result)
	}
	if match[3] == "ML" {
		infused *= 1000
		withdrawn *= 1000
	}
	return infused, withdrawn, nil
}

// transceiveLocked sends one request and decodes its reply.
func (p *Pump) transceiveLocked(command string) (Status, string, error) {
	if !p.connected || p.transport == nil {
		return StatusUnknown, "", ErrNotConnected
	}

	p.metrics.incRequestCount()
	frame := EncodeRequest(p.cfg.Address(), command, p.cfg.SafeMode())
	if err := p.transport.Write(frame); err != nil {
		return StatusUnknown, "", err
	}

	payload, err := readReply(p.transport, p.cfg.SafeMode(), p.cfg.ReadTimeout())
	if err != nil {
		if errors.Is(err, ErrReadTimeout) {
			p.metrics.incTimeoutCount()
		}
		p.log.Error("reply read failed", "command", command, "error", err)
		return StatusUnknown, "", err
	}

	return p.parseReplyLogged(command, payload)
}

// parseReplyLogged decodes a reply payload, counting alarms and logging
// protocol errors with the command and raw reply for context.
func (p *Pump) parseReplyLogged(command, payload string) (Status, string, error) {
	status, result, err := ParseReply(p.cfg.Address(), payload)
	if err != nil {
		var alarm *AlarmError
		if errors.As(err, &alarm) {
			p.metrics.incAlarmCount()
		}
		p.log.Error("protocol error", "command", command, "reply", payload, "error", err)
	}
	return status, result, err
}
