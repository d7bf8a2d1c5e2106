package model

// BadgeTone is the visual tone of a status badge.
type BadgeTone string

const (
	ToneSuccess BadgeTone = "success"
	ToneDanger  BadgeTone = "danger"
	ToneWarning BadgeTone = "warning"
	ToneInfo    BadgeTone = "info"
	ToneNeutral BadgeTone = "neutral"
)

// statusTones maps product and order statuses to badge tones. Unknown statuses are neutral.
//
//nolint:gochecknoglobals // static read-only lookup
var statusTones = map[string]BadgeTone{
	// product statuses
	"Selling":     ToneSuccess,
	"Sold Out":    ToneDanger,
	"Coming Soon": ToneWarning,
	"Pre Order":   ToneInfo,
	// order statuses
	"Pending":    ToneWarning,
	"Processing": ToneInfo,
	"Delivered":  ToneSuccess,
	"Cancel":     ToneDanger,
}

// StatusTone returns the badge tone for a status label.
func StatusTone(status string) BadgeTone {
	if tone, ok := statusTones[status]; ok {
		return tone
	}
	return ToneNeutral
}

// Order statuses counted on the dashboard.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancel     = "Cancel"
)
