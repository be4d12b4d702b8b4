package events

// Well-known topics. Callers are free to use ad-hoc topic strings; these
// are the ones the gateway itself emits.
const (
	// TopicCurrencyChanged fires when the preferred display currency
	// changes. Payload: CurrencyChanged.
	TopicCurrencyChanged Topic = "currency.changed"

	// TopicUploadCompleted fires after a file lands in the upload store.
	// Payload: UploadCompleted.
	TopicUploadCompleted Topic = "upload.completed"

	// TopicSessionStarted fires when a sign-in mints a session token.
	// Payload: SessionStarted.
	TopicSessionStarted Topic = "session.started"
)

// CurrencyChanged is the payload for TopicCurrencyChanged.
type CurrencyChanged struct {
	Code string `json:"code"`
}

// UploadCompleted is the payload for TopicUploadCompleted.
type UploadCompleted struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SessionStarted is the payload for TopicSessionStarted.
type SessionStarted struct {
	Subject string `json:"subject"`
}
