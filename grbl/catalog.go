package grbl

// codeFeedRateNotSet is GRBL error 22: a feed move arrived before any
// F word was programmed.
const codeFeedRateNotSet = 22

// errorCatalog maps GRBL v1.1 error:N codes to descriptions.
var errorCatalog = map[int]string{
	1:  "expected command letter",
	2:  "bad number format",
	3:  "invalid $ statement",
	4:  "negative value",
	5:  "homing cycle not enabled in settings",
	6:  "step pulse time below minimum",
	7:  "EEPROM read failed, settings restored to defaults",
	8:  "$ command only valid when idle",
	9:  "g-code locked out during alarm or jog",
	10: "soft limits require homing to be enabled",
	11: "line exceeds maximum length",
	12: "step rate exceeds maximum",
	13: "safety door detected as opened",
	14: "build info or startup line exceeds EEPROM line length",
	15: "jog target exceeds machine travel",
	16: "invalid jog command",
	17: "laser mode requires PWM output",
	20: "unsupported or invalid g-code command",
	21: "more than one g-code command from the same modal group in block",
	22: "feed rate has not yet been set or is undefined",
	23: "g-code command requires an integer value",
	24: "more than one g-code command using axis words found",
	25: "repeated g-code word in block",
	26: "axis words found with no command using them",
	27: "line number value is invalid",
	28: "g-code command is missing a required value word",
	29: "G59.x work coordinate systems are not supported",
	30: "G53 only allowed with G0 and G1 motion modes",
	31: "axis words found with no command needing them",
	32: "g-code arc requires in-plane axis words",
	33: "motion command target is invalid",
	34: "arc radius value is invalid",
	35: "g-code arc requires in-plane offset words",
	36: "unused value words found in block",
	37: "G43.1 tool length offset only applies to configured axis",
	38: "tool number greater than maximum supported value",
}

// alarmCatalog maps GRBL v1.1 ALARM:N codes to descriptions.
var alarmCatalog = map[int]string{
	1: "hard limit triggered, machine position is likely lost",
	2: "motion target exceeds machine travel",
	3: "reset while in motion, machine position is likely lost",
	4: "probe fail, probe not in expected initial state",
	5: "probe fail, probe did not contact within programmed travel",
	6: "homing fail, reset during active homing cycle",
	7: "homing fail, safety door opened during homing cycle",
	8: "homing fail, could not clear limit switch on pull off",
	9: "homing fail, could not find limit switch within search distance",
}

// ErrorDescription resolves an error:N code. Unknown codes still yield a
// typed description.
func ErrorDescription(code int) string {
	if desc, ok := errorCatalog[code]; ok {
		return desc
	}
	return "unknown error code"
}

// AlarmDescription resolves an ALARM:N code. Unknown codes still yield a
// typed description.
func AlarmDescription(code int) string {
	if desc, ok := alarmCatalog[code]; ok {
		return desc
	}
	return "unknown alarm code"
}
