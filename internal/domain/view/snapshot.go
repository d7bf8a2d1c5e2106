package view

import (
	"time"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// Phase is the lifecycle state of a resource view.
type Phase string

const (
	PhaseLoading             Phase = "loading"
	PhaseReady               Phase = "ready"
	PhaseEmpty               Phase = "empty"
	PhasePendingConfirmation Phase = "pending_confirmation"
)

// NoticeKind classifies an operator notice.
type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notice is a blocking message the operator must acknowledge.
type Notice struct {
	Kind          NoticeKind `json:"kind"`
	Message       string     `json:"message"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

// ToggleFailure is a toggle the server rejected. The local value was not reverted
// unless the view runs with rollback enabled.
type ToggleFailure struct {
	CorrelationID string    `json:"correlation_id"`
	EntityID      string    `json:"entity_id"`
	Field         string    `json:"field"`
	Previous      any       `json:"previous"`
	Error         string    `json:"error"`
	RolledBack    bool      `json:"rolled_back"`
	At            time.Time `json:"at"`
}

// Snapshot is an immutable copy of the view state published after every change.
type Snapshot struct {
	Resource    string               `json:"resource"`
	Generation  uint64               `json:"generation"`
	Version     uint64               `json:"version"`
	Phase       Phase                `json:"phase"`
	Page        model.PageDescriptor `json:"page"`
	PageNumbers []int                `json:"page_numbers"`
	Rows        []model.Entity       `json:"rows"`
	// PendingDelete is the id awaiting confirmation while in PhasePendingConfirmation.
	PendingDelete string `json:"pending_delete,omitempty"`
	// Deleting lists ids whose confirmed delete has not been acknowledged yet.
	Deleting      []string        `json:"deleting,omitempty"`
	Notice        *Notice         `json:"notice,omitempty"`
	InFlight      int             `json:"in_flight"`
	LoadFailed    bool            `json:"load_failed"`
	FailedToggles []ToggleFailure `json:"failed_toggles,omitempty"`
	Unmounted     bool            `json:"unmounted,omitempty"`
}

// Idle reports whether no request of this generation is outstanding.
func (s Snapshot) Idle() bool { return s.InFlight == 0 }

// Blocked reports whether the operator must answer a confirmation or notice first.
func (s Snapshot) Blocked() bool {
	return s.Phase == PhasePendingConfirmation || s.Notice != nil
}

// IsDeleting reports whether a confirmed delete for id is in flight.
func (s Snapshot) IsDeleting(id string) bool {
	for _, d := range s.Deleting {
		if d == id {
			return true
		}
	}
	return false
}
