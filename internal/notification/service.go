// Package notification sends booking confirmations. A send failure is
// logged by the caller and never fails the booking itself.
package notification

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/akulbansal1/carelink/internal/model"
)

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to string, appt *model.Appointment) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	loc    *time.Location
}

func NewService(cfg SMTPConfig, loc *time.Location) Service {
	if !cfg.Enabled {
		return noopService{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &emailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		loc:    loc,
	}
}

func (s *emailService) SendAppointmentConfirmation(ctx context.Context, to string, appt *model.Appointment) error {
	if to == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Appointment confirmed")
	when := appt.Date + " at " + appt.Time
	if startsAt, err := appt.StartsAt(s.loc); err == nil {
		when = startsAt.Format("Monday, January 2 2006 at 3:04 PM")
	}
	m.SetBody("text/plain", fmt.Sprintf(
		"Your %s appointment is confirmed for %s.\n\nNotes: %s\n",
		appt.Type, when, appt.Notes,
	))

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type noopService struct{}

func (noopService) SendAppointmentConfirmation(context.Context, string, *model.Appointment) error {
	return nil
}
