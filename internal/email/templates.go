package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

// ReservationDetails is the reservation summary shared by every booking email.
type ReservationDetails struct {
	FacilityName string
	CourtName    string
	Date         string
	TimeRange    string
	Total        string
	Reason       string
}

type PasswordResetDetails struct {
	FacilityName string
	Link         string
	ExpiresIn    time.Duration
}

// FormatDateTimeRange renders a stored date and "HH:MM" pair for people.
// Unparseable input is returned unchanged.
func FormatDateTimeRange(date, start, end string) (string, string) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date, start + " - " + end
	}
	return day.Format("Monday, Jan 2, 2006"), fmt.Sprintf("%s - %s", formatClock(start), formatClock(end))
}

func formatClock(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

// FormatCents renders an amount in cents as a two-decimal currency string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func BuildConfirmation(details ReservationDetails) Message {
	return buildReservationEmail("Court Reservation Confirmed", "Your court reservation is confirmed.", details)
}

func BuildUpdate(details ReservationDetails) Message {
	return buildReservationEmail("Court Reservation Updated", "Your court reservation has been changed.", details)
}

func BuildCancellation(details ReservationDetails) Message {
	return buildReservationEmail("Court Reservation Cancelled", "Your court reservation has been cancelled.", details)
}

func BuildReminder(details ReservationDetails) Message {
	return buildReservationEmail("Upcoming Court Reservation", "Reminder: your court reservation is coming up.", details)
}

func BuildPasswordReset(details PasswordResetDetails) Message {
	facilityName := orDefault(details.FacilityName, "your facility")
	lines := []string{
		fmt.Sprintf("A password reset was requested for your %s account.", facilityName),
		"",
		fmt.Sprintf("Reset your password: %s", details.Link),
	}
	if details.ExpiresIn > 0 {
		lines = append(lines, fmt.Sprintf("This link expires in %s.", humanDuration(details.ExpiresIn)))
	}
	lines = append(lines, "", "If you did not request this, you can ignore this email.")

	return Message{
		Subject: fmt.Sprintf("Password Reset - %s", facilityName),
		Body:    strings.Join(lines, "\n"),
	}
}

func buildReservationEmail(subjectPrefix, headline string, details ReservationDetails) Message {
	facilityName := orDefault(details.FacilityName, "your facility")

	lines := []string{
		headline,
		"",
		fmt.Sprintf("Facility: %s", facilityName),
		fmt.Sprintf("Court: %s", orDefault(details.CourtName, "TBD")),
		fmt.Sprintf("Date: %s", orDefault(details.Date, "TBD")),
		fmt.Sprintf("Time: %s", orDefault(details.TimeRange, "TBD")),
	}
	if total := strings.TrimSpace(details.Total); total != "" {
		lines = append(lines, fmt.Sprintf("Total: %s", total))
	}
	if reason := strings.TrimSpace(details.Reason); reason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", reason))
	}

	return Message{
		Subject: fmt.Sprintf("%s - %s", subjectPrefix, facilityName),
		Body:    strings.Join(lines, "\n"),
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
