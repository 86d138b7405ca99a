package domain

import "time"

// Transition is the payload of the status-change notification bus.
// The engine emits exactly one Transition per observed status change, in
// tick order, synchronously from the ticking goroutine. Consumers must treat
// it as a snapshot and must not block; anything slow (file writers, network
// publishers) buffers on its own side.
type Transition struct {
	Timestamp time.Time `json:"timestamp"`
	UID       uint16    `json:"uid"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Prev      Status    `json:"prev"`
	Next      Status    `json:"next"`
}

// TransitionFunc is the subscription callback of the notification bus.
type TransitionFunc func(Transition)
