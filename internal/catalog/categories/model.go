// Package categories manages product categories.
package categories

import "time"

// Category groups products for listing and reporting.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
