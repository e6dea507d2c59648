package entity

import "strings"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// rejected is reachable in the table but no operation drives it yet.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending: {RequestAccepted, RequestRejected},
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RequestStatus) IsTerminal() bool {
	return len(requestTransitions[s]) == 0
}

type AlertStatus string

const (
	AlertActive    AlertStatus = "active"
	AlertCancelled AlertStatus = "cancelled"
)

var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertActive: {AlertCancelled},
}

func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	for _, allowed := range alertTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AlertStatus) IsTerminal() bool {
	return len(alertTransitions[s]) == 0
}

type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyLow    UrgencyLevel = "low"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// Label is the display form, e.g. "HIGH".
func (u UrgencyLevel) Label() string {
	return strings.ToUpper(string(u))
}

type InitiatedBy string

const (
	InitiatedByDoctor InitiatedBy = "doctor"
	InitiatedByBank   InitiatedBy = "bank"
)

type ResponseStatus string

const ResponsePledged ResponseStatus = "pledged"
