package delivery

import "errors"

var (
	// ErrAlreadySent means the notification was delivered by a previous job.
	ErrAlreadySent = errors.New("notification already sent")
	// ErrInProgress means another worker currently holds the delivery.
	ErrInProgress = errors.New("notification delivery in progress")
)
