// model/book.go
package model

// BookLocation is a (section, shelf) pair identifying physical storage.
// Uniqueness key = (section, shelf).
type BookLocation struct {
	ID      int64  `json:"id"`
	Section string `json:"section"`
	Shelf   int    `json:"shelf"`
}

// Book uniqueness key = (title, author, year_of_publication), case-insensitive.
// Quantity is the number of copies currently available for borrowing.
type Book struct {
	ID                int64        `json:"id"`
	Title             string       `json:"title"`
	Author            string       `json:"author"`
	YearOfPublication int          `json:"year_of_publication"`
	Quantity          int          `json:"quantity"`
	Location          BookLocation `json:"location"`
}
