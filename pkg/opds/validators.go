package opds

// PaginationQuery represents pagination query parameters.
type PaginationQuery struct {
	Page int `query:"page" default:"1" validate:"min=1"`
}

// SearchQuery represents search query parameters.
type SearchQuery struct {
	Q    string `query:"q" mod:"trim" validate:"required"`
	Page int    `query:"page" default:"1" validate:"min=1"`
}
