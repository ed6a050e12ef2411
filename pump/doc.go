// Package pump implements a protocol driver for New Era A-1000 family
// syringe pumps over a serial link.
//
// Requests are address-prefixed command strings. In basic mode they are
// carriage-return terminated; in safe mode each request and reply is framed
// STX, length, payload, CRC-16 and ETX, and the CRC is verified on every
// reply. Replies carry the pump's status character and optional data, with
// device alarms and rejected commands surfacing as typed errors.
//
// The high-level Infuse and Withdraw operations program direction, rate and
// volume, start the pump, poll to completion and return the volume the pump
// reports actually moved. Callers are expected to validate requested
// volumes against their vessel model first; the driver reports, it does not
// reconcile.
package pump
