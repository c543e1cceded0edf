package domain

// Profile is the backend's record of the current user, created on first contact.
type Profile struct {
	CreatedAt  Timestamp `json:"created_at"`
	Username   *string   `json:"username"`
	FirstName  *string   `json:"first_name"`
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
}

// Health is the backend liveness report.
type Health struct {
	Status string `json:"status"`
}

// OK reports whether the backend said it is healthy.
func (h Health) OK() bool {
	return h.Status == "ok"
}
