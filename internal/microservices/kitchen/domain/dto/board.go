package dto

import "campus-crave/internal/domain"

// PrepLine is one dish with the total quantity still to cook.
type PrepLine struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type Board struct {
	Active    []domain.Order `json:"active"`
	Completed []domain.Order `json:"completed"`
	Pending   int            `json:"pending"`
	Preparing int            `json:"preparing"`
	ToPrepare []PrepLine     `json:"to_prepare"`
}
