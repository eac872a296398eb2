// model/loanModel.go
package model

import "time"

// LoanPeriodDays is the fixed window between borrow date and return due date.
const LoanPeriodDays = 28

// Loan is one active borrow record linking a reader to a book copy.
// At most one active loan exists per (reader, book) pair.
type Loan struct {
	ID            int64     `json:"id"`
	ReaderID      int64     `json:"reader_id"`
	BookID        int64     `json:"book_id"`
	BorrowDate    time.Time `json:"borrow_date"`
	ReturnDueDate time.Time `json:"return_due_date"`
}

// BorrowedBookRow is the borrowed-books-by-reader report projection.
type BorrowedBookRow struct {
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	YearOfPublication int       `json:"year_of_publication"`
	BorrowDate        time.Time `json:"borrow_date"`
	ReturnDueDate     time.Time `json:"return_due_date"`
}

// OverdueLoanRow is one overdue loan joined with its reader.
type OverdueLoanRow struct {
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	BorrowDate    time.Time `json:"borrow_date"`
	ReturnDueDate time.Time `json:"return_due_date"`
}
