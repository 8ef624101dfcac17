package model

import "time"

// Session is the single source of truth for who is logged in to the
// admin dashboard. It is persisted server-side and referenced by a
// signed token; its absence gates every admin route.
type Session struct {
	DoctorID int64     `json:"doctor_id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	LoginAt  time.Time `json:"login_at"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminLoginResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}
