package models

import "time"

// Calendar groups events under a unique name. The timezone is carried as
// metadata only; event times are naive local date-times.
type Calendar struct {
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
