package model

// Doctor is seeded out-of-band upstream; profile edits and deletion go
// through the sync adapter.
type Doctor struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type UpdateDoctorRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}
