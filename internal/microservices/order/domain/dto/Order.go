package dto

import "campus-crave/internal/domain"

type CartLine struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required"`
	Qty        int   `json:"qty" validate:"required,min=1,max=50"`
}

type CheckoutRequest struct {
	Items    []CartLine `json:"items" validate:"required,min=1,dive"`
	Location string     `json:"location" validate:"required"`
	Phone    string     `json:"phone"`
}

type ReviewRequest struct {
	Stars int    `json:"stars"`
	Text  string `json:"text" validate:"required"`
}

// MenuCategory is one heading of the menu with its items.
type MenuCategory struct {
	Name  string            `json:"name"`
	Items []domain.MenuItem `json:"items"`
}

type ModifyResponse struct {
	Items []domain.MenuItem `json:"items"`
	Total float64           `json:"total"`
}
