package service

import (
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
)

// sendClass is the dispatcher's view of one send outcome.
type sendClass int

const (
	sendOK sendClass = iota
	// sendRetryable covers transient failures worth another in-process
	// attempt: transport errors, 429/5xx, unavailable/internal/
	// exhausted/deadline gateway codes.
	sendRetryable
	// sendDeadToken means the token should never be used again:
	// 404, unregistered, invalid-argument.
	sendDeadToken
	// sendFailed is permanent but says nothing about the token.
	sendFailed
)

// classifySend maps a gateway send error to a class. The vendor error
// taxonomy drifts; keep every classification rule inside this function.
func classifySend(err error) sendClass {
	if err == nil {
		return sendOK
	}

	switch {
	case messaging.IsUnregistered(err),
		errorutils.IsNotFound(err),
		errorutils.IsInvalidArgument(err):
		return sendDeadToken
	case errorutils.IsUnavailable(err),
		errorutils.IsInternal(err),
		errorutils.IsResourceExhausted(err),
		errorutils.IsDeadlineExceeded(err):
		return sendRetryable
	}

	resp := errorutils.HTTPResponse(err)
	if resp == nil {
		// Network-level failure with no HTTP status.
		return sendRetryable
	}
	return classifyStatus(resp.StatusCode)
}

// classifyStatus maps a bare gateway HTTP status to a class.
func classifyStatus(code int) sendClass {
	switch code {
	case 404:
		return sendDeadToken
	case 429, 500, 502, 503, 504:
		return sendRetryable
	}
	return sendFailed
}
