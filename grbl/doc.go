// Package grbl implements a line-oriented protocol driver for GRBL-class
// CNC motion controllers over a serial link.
//
// The driver exposes a small capability surface: Connect (open, home, set
// the default feed rate), Execute (send one command line and drain its
// reply), Status (realtime state and machine position), Stop, Unlock,
// SoftReset and Close. Command execution is serialized so a reply is always
// drained by the command that provoked it, and motion commands block until
// the controller reports Idle again.
//
// Numeric error:N and ALARM:N replies resolve through fixed catalogs into
// typed errors. A missing feed rate (error 22) is transient and corrected
// once per command by setting the configured default feed rate; alarms are
// fatal to the running operation but leave the link open so the caller can
// inspect state and unlock.
package grbl
