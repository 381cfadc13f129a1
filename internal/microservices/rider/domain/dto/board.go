package dto

import "campus-crave/internal/domain"

type Board struct {
	Available []domain.Order `json:"available"`
	MyJobs    []domain.Order `json:"my_jobs"`
	Delivered []domain.Order `json:"delivered"`
}

type RouteResponse struct {
	Route string   `json:"route"`
	Stops []string `json:"stops"`
	Jobs  int      `json:"jobs"`
}
