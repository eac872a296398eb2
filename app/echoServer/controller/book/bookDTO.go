package book

type CreateBookReq struct {
	Title             string `json:"title" validate:"required"`
	Author            string `json:"author" validate:"required"`
	YearOfPublication int    `json:"year_of_publication" validate:"gte=0"`
	Quantity          int    `json:"quantity" validate:"gte=0"`
	Section           string `json:"section" validate:"required"`
	Shelf             int    `json:"shelf" validate:"required,gt=0"`
}

type QuantityReq struct {
	Title             string `json:"title" validate:"required"`
	Author            string `json:"author" validate:"required"`
	YearOfPublication int    `json:"year_of_publication" validate:"gte=0"`
	Amount            int    `json:"amount" validate:"required,gt=0"`
}
