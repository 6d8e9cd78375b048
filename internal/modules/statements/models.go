package statements

import "time"

// Company is a registered analysis subject. Statements are keyed by its ID.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
