package models

// Category groups products. Name is unique across all categories.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryUpdate carries the fields of a category update. A nil Description
// keeps the stored value.
type CategoryUpdate struct {
	Name        string
	Description *string
}

// CategoryInput is the request body for creating or updating a category.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description" validate:"omitnil,nonempty"`
}
