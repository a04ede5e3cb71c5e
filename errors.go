package alp

import "fmt"

// Error is a status code reported by the device controller.
//
// The set is closed: codes not listed here are reported as ErrUnknown.
type Error int64

// Status codes as reported by the ALP API. StatusOK is not an error.
const (
	StatusOK int64 = 0

	ErrNotOnline         Error = 1001
	ErrNotIdle           Error = 1002
	ErrNotAvailable      Error = 1003
	ErrNotReady          Error = 1004
	ErrParameterInvalid  Error = 1005
	ErrAddressInvalid    Error = 1006
	ErrMemoryFull        Error = 1007
	ErrSequenceInUse     Error = 1008
	ErrHaltedByDevice    Error = 1009
	ErrInitFail          Error = 1010
	ErrCommunicationFail Error = 1011
	ErrDeviceRemoved     Error = 1012
	ErrNotConfigured     Error = 1013
	ErrLoaderVersion     Error = 1014
	ErrPoweredDown       Error = 1018
	ErrDriverVersion     Error = 1019
	ErrSDRAMInitFail     Error = 1020
	ErrConfigMismatch    Error = 1021
	ErrUnknown           Error = 1999
)

var errorNames = map[Error]string{
	ErrNotOnline:         "device not online",
	ErrNotIdle:           "device not idle",
	ErrNotAvailable:      "device not available",
	ErrNotReady:          "device not ready",
	ErrParameterInvalid:  "invalid parameter",
	ErrAddressInvalid:    "invalid address",
	ErrMemoryFull:        "sequence memory full",
	ErrSequenceInUse:     "sequence in use",
	ErrHaltedByDevice:    "device halted",
	ErrInitFail:          "initialization failed",
	ErrCommunicationFail: "communication failed",
	ErrDeviceRemoved:     "device removed",
	ErrNotConfigured:     "device not configured",
	ErrLoaderVersion:     "loader version mismatch",
	ErrPoweredDown:       "device powered down",
	ErrDriverVersion:     "driver version mismatch",
	ErrSDRAMInitFail:     "SDRAM initialization failed",
	ErrConfigMismatch:    "configuration mismatch",
	ErrUnknown:           "unknown error",
}

// Error implements error.
func (e Error) Error() string {
	if s, ok := errorNames[e]; ok {
		return "alp: " + s
	}
	return fmt.Sprintf("alp: status %d", int64(e))
}

// Code returns the numeric status code.
func (e Error) Code() int64 {
	return int64(e)
}

// FromCode maps a status code returned by the controller to an error.
// StatusOK maps to nil and any code outside the known set to ErrUnknown.
func FromCode(code int64) error {
	if code == StatusOK {
		return nil
	}
	e := Error(code)
	if _, ok := errorNames[e]; !ok {
		return ErrUnknown
	}
	return e
}
