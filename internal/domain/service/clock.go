package service

import "time"

// Clock supplies the current time in the portal's configured zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}
