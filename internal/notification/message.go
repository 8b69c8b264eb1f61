package notification

import (
	"fmt"
	"time"

	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/parse"
)

// displayDate renders a YYYY-MM-DD date as DD/MM/YYYY; anything unparseable is returned unchanged.
func displayDate(date string) string {
	t, err := time.Parse(parse.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

func confirmationText(r model.Reservation) string {
	return fmt.Sprintf("Olá %s! Seu agendamento foi confirmado em %s às %s.", r.Name, displayDate(r.Date), r.Time)
}

func ownerSummary(r model.Reservation) string {
	return fmt.Sprintf("%s reservou %s às %s", r.Name, displayDate(r.Date), r.Time)
}
