package entity

import "errors"

var (
	ErrConfig        = errors.New("invalid configuration")
	ErrBrowserLaunch = errors.New("browser launch failed")
	ErrModelInit     = errors.New("language model init failed")
	ErrAgentInit     = errors.New("agent init failed")
	ErrAgentRun      = errors.New("agent run failed")
	ErrBrowserClose  = errors.New("browser close failed")

	ErrBrowserClosed    = errors.New("browser is closed")
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
	ErrTooManyFailures  = errors.New("too many consecutive tool failures")
	ErrDomainNotAllowed = errors.New("domain not allowed")
	ErrUnknownScrollDir = errors.New("unknown scroll direction")
	ErrNoChoices        = errors.New("no choices in response")
)
