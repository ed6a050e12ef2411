package grbl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/internal/pool"
	"github.com/BU-KABlab/PANDA-BEAR-sub004/logger"
)

// statusRetryLimit bounds the re-query loop when a realtime status query
// goes unanswered.
const statusRetryLimit = 25

// Controller drives one GRBL-class motion controller. All command execution
// is serialized: each command writes its line, drains the reply it provoked,
// and for motion commands polls the controller back to Idle before the next
// command may start.
type Controller struct {
	cfg *Config
	log logger.Logger

	// mu serializes command execution on the link.
	mu sync.Mutex

	// stateMu guards transport and connected.
	stateMu   sync.Mutex
	transport Transport
	connected bool

	metrics ControllerMetrics
}

// NewController creates a controller for cfg. transport may be nil, in
// which case Connect opens the configured serial port; pass a SimTransport
// to run against the simulator.
func NewController(cfg *Config, transport Transport) *Controller {
	return &Controller{
		cfg:       cfg,
		log:       cfg.GetLogger(),
		transport: transport,
	}
}

// Metrics returns the controller's metrics.
func (c *Controller) Metrics() *ControllerMetrics { return &c.metrics }

// Connect opens the link, drains the boot banner, runs the homing cycle and
// programs the default feed rate. Machine coordinates are only meaningful
// after homing, so every session starts with one.
func (c *Controller) Connect() error {
	c.stateMu.Lock()
	if c.connected {
		c.stateMu.Unlock()
		return nil
	}
	if c.transport == nil {
		t, err := OpenSerial(c.cfg.Port(), c.cfg.BaudRate())
		if err != nil {
			c.stateMu.Unlock()
			return err
		}
		c.transport = t
	}
	c.connected = true
	t := c.transport
	c.stateMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.drainBanner(t)
	if err := c.homeLocked(t); err != nil {
		return err
	}
	if _, err := c.executeLocked(t, FeedRateCommand(c.cfg.FeedRate()), false); err != nil {
		return err
	}

	c.log.Info("controller connected", "port", c.cfg.Port(), "feedRate", c.cfg.FeedRate())

	return nil
}

// Execute sends one command line and returns its decoded reply. Motion
// commands additionally block until the controller reports Idle, or fail
// with ErrCommandTimeout. A move rejected with GRBL error 22 is corrected
// exactly once by programming the default feed rate and re-issuing the line.
func (c *Controller) Execute(line string) (string, error) {
	t, err := c.link()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.executeLocked(t, line, true)
}

// ExecuteMove renders and executes one point-to-point move.
func (c *Controller) ExecuteMove(m Move) error {
	_, err := c.Execute(m.Command())
	return err
}

// Status issues a realtime query and returns a freshly parsed report.
func (c *Controller) Status() (Status, error) {
	t, err := c.link()
	if err != nil {
		return Status{State: StateUnknown}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.statusLocked(t)
}

// Position returns the current machine position from a status query.
func (c *Controller) Position() (deck.Coordinates, error) {
	status, err := c.Status()
	if err != nil {
		return deck.Coordinates{}, err
	}
	return status.Position, nil
}

// Home runs the homing cycle and waits for it to complete.
func (c *Controller) Home() error {
	t, err := c.link()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.homeLocked(t)
}

// Stop issues the realtime feed-hold. It bypasses command serialization so
// it can interrupt an in-flight move.
func (c *Controller) Stop() error {
	t, err := c.link()
	if err != nil {
		return err
	}
	c.log.Warn("feed hold issued")
	return t.WriteLine(cmdFeedHold)
}

// Unlock clears an alarm lockout with $X. The machine position may be
// stale afterwards; re-home before trusting coordinates.
func (c *Controller) Unlock() error {
	_, err := c.Execute(cmdUnlock)
	return err
}

// SoftReset sends the realtime reset byte and drains the fresh boot banner.
// The modal feed rate is lost; the next move re-triggers the feed-rate
// correction.
func (c *Controller) SoftReset() error {
	t, err := c.link()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Warn("soft reset issued")
	if err := t.WriteByte(softResetByte); err != nil {
		return err
	}
	c.drainBanner(t)
	return nil
}

// Settings dumps the controller's $$ settings into a code -> value map.
func (c *Controller) Settings() (map[int]string, error) {
	t, err := c.link()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.incCommandCount()
	if err := t.WriteLine(cmdSettings); err != nil {
		return nil, err
	}

	settings := make(map[int]string)
	deadline := time.Now().Add(c.cfg.CommandTimeout())
	for {
		if time.Now().After(deadline) {
			c.metrics.incTimeoutCount()
			return nil, fmt.Errorf("%w: settings dump", ErrCommandTimeout)
		}
		raw, err := t.ReadLine(c.cfg.ReadTimeout())
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reply := strings.TrimSpace(raw)
		if reply == "ok" {
			return settings, nil
		}
		if !strings.HasPrefix(reply, "$") {
			continue
		}
		key, value, found := strings.Cut(reply[1:], "=")
		if !found {
			continue
		}
		code, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		settings[code] = value
	}
}

// Close closes the link. The controller cannot be reused afterwards.
func (c *Controller) Close() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	return c.transport.Close()
}

func (c *Controller) link() (Transport, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if !c.connected || c.transport == nil {
		return nil, ErrNotConnected
	}
	return c.transport, nil
}

// drainBanner consumes the boot banner and any stale replies after a reset.
func (c *Controller) drainBanner(t Transport) {
	for {
		line, err := t.ReadLine(c.cfg.ReadTimeout())
		if err != nil {
			return
		}
		if line != "" {
			c.log.Debug("banner", "line", line)
		}
	}
}

func (c *Controller) homeLocked(t Transport) error {
	c.log.Info("homing cycle started")
	_, err := c.executeLocked(t, cmdHome, false)
	if err != nil {
		return err
	}
	c.log.Info("homing cycle complete")
	return nil
}

func (c *Controller) executeLocked(t Transport, line string, allowCorrection bool) (string, error) {
	if line == cmdStatus {
		status, err := c.statusLocked(t)
		if err != nil {
			return "", err
		}
		return status.Raw, nil
	}

	c.metrics.incCommandCount()
	c.log.Debug("execute", "line", line)
	if err := t.WriteLine(line); err != nil {
		return "", err
	}

	replyTimeout := c.cfg.CommandTimeout()
	if line == cmdHome {
		replyTimeout = c.cfg.HomingTimeout()
	}
	reply, err := c.drainReplyLocked(t, line, replyTimeout)
	if err != nil {
		var cmdErr *CommandError
		if allowCorrection && errors.As(err, &cmdErr) && cmdErr.Transient() {
			c.metrics.incRetryCount()
			c.log.Warn("feed rate not programmed, correcting once",
				"line", line, "feedRate", c.cfg.FeedRate())
			if _, ferr := c.executeLocked(t, FeedRateCommand(c.cfg.FeedRate()), false); ferr != nil {
				return "", ferr
			}
			return c.executeLocked(t, line, false)
		}
		return "", err
	}

	if isMotion(line) {
		timeout := c.cfg.CommandTimeout()
		if line == cmdHome {
			timeout = c.cfg.HomingTimeout()
		}
		if err := c.waitIdleLocked(t, timeout); err != nil {
			return "", err
		}
	}

	return reply, nil
}

// drainReplyLocked reads until the reply the written line provoked: "ok",
// "error:N" or "ALARM:N". Push messages in square brackets are logged and
// skipped so the line is never left mid-frame.
func (c *Controller) drainReplyLocked(t Transport, line string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.metrics.incTimeoutCount()
			return "", fmt.Errorf("%w: no reply to %q", ErrCommandTimeout, line)
		}
		if remaining > c.cfg.ReadTimeout() {
			remaining = c.cfg.ReadTimeout()
		}

		raw, err := t.ReadLine(remaining)
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return "", err
		}

		reply := strings.TrimSpace(raw)
		switch {
		case reply == "":
			continue
		case reply == "ok":
			return reply, nil
		case strings.HasPrefix(reply, "error:"):
			return "", c.commandError(line, reply)
		case strings.HasPrefix(reply, "ALARM:"):
			return "", c.alarmError(reply)
		default:
			c.log.Debug("push message", "line", line, "reply", reply)
		}
	}
}

// waitIdleLocked polls the realtime status until the controller reports
// Idle again.
func (c *Controller) waitIdleLocked(t Transport, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		status, err := c.statusLocked(t)
		if err != nil {
			return err
		}
		switch status.State {
		case StateIdle:
			return nil
		case StateAlarm:
			c.metrics.incAlarmCount()
			return &AlarmError{Code: 0, Description: "controller reports alarm state"}
		}

		if time.Now().After(deadline) {
			c.metrics.incTimeoutCount()
			return fmt.Errorf("%w: still %s after %v", ErrCommandTimeout, status.State, timeout)
		}

		timer := pool.GetTimer(c.cfg.PollInterval())
		<-timer.C
		pool.PutTimer(timer)
	}
}

// statusLocked issues ? and parses the report, re-querying a bounded number
// of times when the controller stays silent.
func (c *Controller) statusLocked(t Transport) (Status, error) {
	for attempt := 0; attempt < statusRetryLimit; attempt++ {
		c.metrics.incPollCount()
		if err := t.WriteLine(cmdStatus); err != nil {
			return Status{State: StateUnknown}, err
		}

		raw, err := c.readReport(t)
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return Status{State: StateUnknown}, err
		}

		status, err := ParseStatus(raw)
		if err != nil {
			c.log.Error("bad status report", "reply", raw, "error", err)
		}
		return status, err
	}

	c.metrics.incTimeoutCount()
	return Status{State: StateUnknown},
		fmt.Errorf("%w: no status report after %d queries", ErrReadTimeout, statusRetryLimit)
}

// readReport returns the next substantive reply line, skipping empty lines
// and interleaved ok acks.
func (c *Controller) readReport(t Transport) (string, error) {
	deadline := time.Now().Add(c.cfg.ReadTimeout())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrReadTimeout
		}
		raw, err := t.ReadLine(remaining)
		if err != nil {
			return "", err
		}
		reply := strings.TrimSpace(raw)
		if reply == "" || reply == "ok" {
			continue
		}
		return reply, nil
	}
}

func (c *Controller) commandError(line, reply string) error {
	code, _ := strconv.Atoi(strings.TrimPrefix(reply, "error:"))
	err := &CommandError{Code: code, Description: ErrorDescription(code), Line: line}
	c.log.Error("command rejected", "line", line, "reply", reply, "desc", err.Description)
	return err
}

func (c *Controller) alarmError(reply string) error {
	c.metrics.incAlarmCount()
	code, _ := strconv.Atoi(strings.TrimPrefix(reply, "ALARM:"))
	err := &AlarmError{Code: code, Description: AlarmDescription(code)}
	c.log.Error("controller alarm", "reply", reply, "desc", err.Description)
	return err
}
