package pump

// Status is the pump's operational state from a reply's status character.
type Status int8

const (
	StatusUnknown Status = iota
	StatusInfusing
	StatusWithdrawing
	StatusPurging
	StatusStopped
	StatusPaused
	StatusSleeping
	StatusWaiting
)

var statusChars = map[byte]Status{
	'I': StatusInfusing,
	'W': StatusWithdrawing,
	'X': StatusPurging,
	'S': StatusStopped,
	'P': StatusPaused,
	'T': StatusSleeping,
	'U': StatusWaiting,
}

func (s Status) String() string {
	switch s {
	case StatusInfusing:
		return "infusing"
	case StatusWithdrawing:
		return "withdrawing"
	case StatusPurging:
		return "purging"
	case StatusStopped:
		return "stopped"
	case StatusPaused:
		return "paused"
	case StatusSleeping:
		return "sleeping"
	case StatusWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Running reports whether the plunger is in motion.
func (s Status) Running() bool {
	return s == StatusInfusing || s == StatusWithdrawing || s == StatusPurging
}

// Direction is the pumping direction.
type Direction int8

const (
	DirectionInfuse Direction = iota
	DirectionWithdraw
)

// mnemonic returns the direction's wire argument.
func (d Direction) mnemonic() string {
	if d == DirectionWithdraw {
		return "WDR"
	}
	return "INF"
}

func (d Direction) String() string {
	if d == DirectionWithdraw {
		return "withdraw"
	}
	return "infuse"
}

// alarmResetCode is the alarm the pump raises after a power interruption.
// It is expected on first contact and cleared by the next query.
const alarmResetCode = 'R'

var alarmDescriptions = map[byte]string{
	'R': "pump was reset by a power interruption",
	'S': "pump motor stalled",
	'T': "safe mode communication timed out",
	'E': "pumping program error",
	'O': "pumping program phase out of range",
}

var commandErrorDescriptions = map[string]string{
	"":    "command not recognized",
	"NA":  "command not currently applicable",
	"OOR": "command argument out of range",
	"COM": "invalid communication packet",
	"IGN": "command ignored",
}

func alarmDescription(code byte) string {
	if desc, ok := alarmDescriptions[code]; ok {
		return desc
	}
	return "unknown alarm code"
}

func commandErrorDescription(code string) string {
	if desc, ok := commandErrorDescriptions[code]; ok {
		return desc
	}
	return "unknown command error"
}
