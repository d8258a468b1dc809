package share

import (
	"context"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

func IsContextClosedError(err error) bool {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsClientGoneError reports errors caused by a peer that went away.
func IsClientGoneError(err error) bool {
	if IsContextClosedError(err) {
		return true
	}
	return websocket.IsCloseError(
		errors.Cause(err),
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
