package model

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is an external collaborator: reservations reference it by id
// but the engine only reads its status and time window.
type Appointment struct {
	ID      string            `db:"id" json:"id"`
	Status  AppointmentStatus `db:"status" json:"status"`
	StartAt time.Time         `db:"start_at" json:"start_at"`
	EndAt   time.Time         `db:"end_at" json:"end_at"`
}

func (a *Appointment) Cancelled() bool {
	return a.Status == AppointmentCancelled
}

func (a *Appointment) Completed() bool {
	return a.Status == AppointmentCompleted
}
