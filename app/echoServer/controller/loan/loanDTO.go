package loan

import "time"

type LoanReq struct {
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name" validate:"required"`
	DateOfBirth       string `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
	Title             string `json:"title" validate:"required"`
	Author            string `json:"author" validate:"required"`
	YearOfPublication int    `json:"year_of_publication" validate:"gte=0"`
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
