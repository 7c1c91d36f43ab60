package report

import "strings"

// AuthorizationState is the gateway's authorization status tag. The gateway
// documents only part of its vocabulary, so any string may show up here.
type AuthorizationState string

const (
	StateNew                         AuthorizationState = "NEW"
	StateStarted                     AuthorizationState = "STARTED"
	StateRedirectedForAuthentication AuthorizationState = "REDIRECTED_FOR_AUTHENTICATION"
	StateRedirectedForAuthorization  AuthorizationState = "REDIRECTED_FOR_AUTHORIZATION"
	StateAuthenticated               AuthorizationState = "AUTHENTICATED"
	StateAuthorizationRequested      AuthorizationState = "AUTHORIZATION_REQUESTED"
	StateRiskCheckOK                 AuthorizationState = "RISK_CHECK_OK"
	StateRiskCheckFailed             AuthorizationState = "RISK_CHECK_FAILED"
	StateAuthorized                  AuthorizationState = "AUTHORIZED"
	StateAuthorizationFailed         AuthorizationState = "AUTHORIZATION_FAILED"
	StateAuthorizationError          AuthorizationState = "AUTHORIZATION_ERROR"
	StateCancelRequested             AuthorizationState = "CANCEL_REQUESTED"
	StateCanceled                    AuthorizationState = "CANCELED"
)

var knownAuthorizationStates = map[AuthorizationState]struct{}{
	StateNew: {}, StateStarted: {}, StateRedirectedForAuthentication: {},
	StateRedirectedForAuthorization: {}, StateAuthenticated: {},
	StateAuthorizationRequested: {}, StateRiskCheckOK: {}, StateRiskCheckFailed: {},
	StateAuthorized: {}, StateAuthorizationFailed: {}, StateAuthorizationError: {},
	StateCancelRequested: {}, StateCanceled: {},
}

// proceedableStates are the states in which the gateway waits for a proceed call.
var proceedableStates = []AuthorizationState{
	StateRedirectedForAuthentication,
	StateRedirectedForAuthorization,
	StateAuthorizationRequested,
	StateRiskCheckOK,
}

func (s AuthorizationState) normalized() AuthorizationState {
	return AuthorizationState(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Is compares two states ignoring case and surrounding whitespace.
func (s AuthorizationState) Is(other AuthorizationState) bool {
	return s.normalized() == other.normalized()
}

// Known reports whether the state is part of the documented vocabulary.
func (s AuthorizationState) Known() bool {
	_, ok := knownAuthorizationStates[s.normalized()]
	return ok
}

// Proceedable reports whether a proceed call may move this state forward.
func (s AuthorizationState) Proceedable() bool {
	for _, p := range proceedableStates {
		if s.Is(p) {
			return true
		}
	}
	return false
}

// CaptureState is the status of one capture record.
type CaptureState string

const (
	CaptureNew       CaptureState = "NEW"
	CaptureStarted   CaptureState = "STARTED"
	CapturePaid      CaptureState = "PAID"
	CaptureCaptured  CaptureState = "CAPTURED"
	CaptureComplete  CaptureState = "COMPLETE"
	CaptureCompleted CaptureState = "COMPLETED"
	CaptureCanceled  CaptureState = "CANCELED"
	CaptureError     CaptureState = "ERROR"
)

var terminalCaptureStates = []CaptureState{CapturePaid, CaptureCaptured, CaptureComplete, CaptureCompleted}

// Terminal reports whether money has been collected for this capture.
// Unrecognized states are never terminal.
func (s CaptureState) Terminal() bool {
	for _, t := range terminalCaptureStates {
		if strings.EqualFold(strings.TrimSpace(string(s)), string(t)) {
			return true
		}
	}
	return false
}

// Started reports whether the capture is waiting for the shopper's money,
// as with a bank transfer promise.
func (s CaptureState) Started() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(CaptureStarted))
}
