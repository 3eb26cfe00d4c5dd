package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-engine/internal/availability"
	"github.com/clinicdesk/booking-engine/internal/booking"
)

type SlotResponse struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}

type DayResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type AvailabilityResponse struct {
	ProviderID    uuid.UUID     `json:"provider_id"`
	Days          []DayResponse `json:"days"`
	AvailableDays []string      `json:"available_days"`
}

type CreateBookingRequest struct {
	ProviderID string `json:"provider_id"`
	SubjectID  string `json:"subject_id"`
	StartsAt   string `json:"starts_at"` // RFC 3339
}

type TransitionBookingRequest struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type BookingResponse struct {
	ID                 uuid.UUID `json:"id"`
	ProviderID         uuid.UUID `json:"provider_id"`
	SubjectID          uuid.UUID `json:"subject_id"`
	StartsAt           time.Time `json:"starts_at"`
	Status             string    `json:"status"`
	StatusChangedAt    time.Time `json:"status_changed_at"`
	StatusChangedBy    uuid.UUID `json:"status_changed_by"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	CompletionNotes    *string   `json:"completion_notes,omitempty"`
}

type HistoryEntryResponse struct {
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	ActorID   uuid.UUID `json:"actor_id"`
	Note      *string   `json:"note,omitempty"`
	At        time.Time `json:"at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const dateLayout = "2006-01-02"

func toAvailabilityResponse(providerID uuid.UUID, res *availability.Result) AvailabilityResponse {
	out := AvailabilityResponse{
		ProviderID:    providerID,
		Days:          make([]DayResponse, len(res.Days)),
		AvailableDays: make([]string, len(res.AvailableDays)),
	}
	for i, day := range res.Days {
		dr := DayResponse{Date: day.Date.Format(dateLayout), Slots: make([]SlotResponse, len(day.Slots))}
		for j, s := range day.Slots {
			dr.Slots[j] = SlotResponse{StartsAt: s.StartsAt, EndsAt: s.EndsAt, Status: string(s.Status)}
		}
		out.Days[i] = dr
	}
	for i, d := range res.AvailableDays {
		out.AvailableDays[i] = d.Format(dateLayout)
	}
	return out
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		ProviderID:         b.ProviderID,
		SubjectID:          b.SubjectID,
		StartsAt:           b.StartsAt,
		Status:             string(b.Status),
		StatusChangedAt:    b.StatusChangedAt,
		StatusChangedBy:    b.StatusChangedBy,
		CancellationReason: b.CancellationReason,
		CompletionNotes:    b.CompletionNotes,
	}
}

func toHistoryResponse(entries []booking.StatusHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			OldStatus: string(e.OldStatus),
			NewStatus: string(e.NewStatus),
			ActorID:   e.ActorID,
			Note:      e.Note,
			At:        e.CreatedAt,
		}
	}
	return out
}
