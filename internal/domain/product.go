package domain

// DefaultCategory is assigned to every product loaded from the sheet.
const DefaultCategory = "General"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
}
