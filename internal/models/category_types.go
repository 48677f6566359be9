package models

// Category is the model for the 'categories' table.
type Category struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	NameNepali  string  `json:"nameNepali" db:"name_nepali"`
	Slug        string  `json:"slug" db:"slug"`
	Description *string `json:"description,omitempty" db:"description"`
	IsActive    bool    `json:"isActive" db:"is_active"`
}
