package dto

import "github.com/avolut/retail-stock-service/internal/model"

type CreateReservationResult struct {
	Reservation      *model.Reservation `json:"reservation"`
	CanCreate        bool               `json:"can_create"`
	RequiresOverride bool               `json:"requires_override"`
	Errors           []string           `json:"errors"`
	Warnings         []string           `json:"warnings"`
}

type ReleaseReservationResult struct {
	Released bool     `json:"released"`
	Warnings []string `json:"warnings"`
}
