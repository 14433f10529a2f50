package models

// Warning is attached to an otherwise-successful response and signals a
// degraded, non-fatal outcome of one stage.
type Warning struct {
	Where  string `json:"where"`
	Hint   string `json:"hint,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Notification event types published after successful profile mutations.
const (
	NotificationAccountCreated = "ACCOUNT_CREATED"
	NotificationProfileUpdated = "PROFILE_UPDATED"
	NotificationAvatarUploaded = "AVATAR_UPLOADED"
)

// NotificationEvent is the lifecycle event published to the notification
// channel. Extra carries event-specific attributes (e.g. the avatar key).
type NotificationEvent struct {
	Identity string
	Type     string
	Message  string
	Extra    map[string]string
}
