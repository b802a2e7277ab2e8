package syncer

import "challengeu/internal/models"

// Status is what a reconciliation step did.
type Status int

const (
	StatusSkipped Status = iota
	StatusCreated
	StatusUpdated
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	case StatusRemoved:
		return "removed"
	default:
		return "skipped"
	}
}

// SkipReason says why a step did nothing.
type SkipReason string

const (
	ReasonUnsupported        SkipReason = "calendar unsupported"
	ReasonPermissionDenied   SkipReason = "calendar permission denied"
	ReasonNoWritableCalendar SkipReason = "no writable calendar"
	ReasonUnparseable        SkipReason = "unparseable date or time"
	ReasonNotMapped          SkipReason = "no mapped event"
	ReasonCreateFailed       SkipReason = "create failed"
	ReasonStoreFailed        SkipReason = "event map unavailable"
	ReasonPanic              SkipReason = "panic"
)

// Result is the outcome of one Upsert or Remove. The public sync entry points
// discard it; it exists so callers and tests can see what happened.
type Result struct {
	Status  Status
	Reason  SkipReason
	EventID string
}

func skipped(reason SkipReason) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

func capabilityReason(c models.Capability) SkipReason {
	if c == models.CapabilityUnsupported {
		return ReasonUnsupported
	}
	return ReasonPermissionDenied
}
