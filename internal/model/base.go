package model

// DateFormat is the calendar-date wire format used everywhere in the API.
// Dates carry no timezone; they are interpreted in the service's configured
// location so calendar bucketing never shifts across UTC boundaries.
const DateFormat = "2006-01-02"

// TimeFormat is the 24-hour local time-of-day wire format.
const TimeFormat = "15:04:05"

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
