// model/reader.go
package model

import "time"

// Reader uniqueness key = (first_name, last_name, date_of_birth),
// names case-insensitive. DateOfBirth carries only the date part.
type Reader struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
}
