package location

type CreateLocationReq struct {
	Section string `json:"section" validate:"required"`
	Shelf   int    `json:"shelf" validate:"required,gt=0"`
}
