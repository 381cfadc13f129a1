package dto

type Stats struct {
	TodayRevenue   float64 `json:"today_revenue"`
	WeeklyRevenue  float64 `json:"weekly_revenue"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	OrdersToday    int     `json:"orders_today"`
	TotalUsers     int     `json:"total_users"`
}

type AddMenuItemRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	Category string  `json:"category"`
	Image    string  `json:"image" validate:"omitempty,url"`
}
