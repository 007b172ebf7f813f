package sender

import "errors"

var (
	ErrSenderClosed    = errors.New("event sender closed")
	ErrDeliveryDropped = errors.New("delivery dropped: subscriber buffer full")
)
