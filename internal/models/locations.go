package models

// PickupSpots are the fixed origins a ride can start from.
var PickupSpots = []string{
	"Gate 1",
	"Gate 2",
	"Tower 1 B1",
	"Tower 2 B1",
	"Tower 3 B1",
	"Tower 4 B1",
	"Tower 5 B1",
	"Tower 6 B1",
	"Tower 7 B1",
	"Tower 8 B1",
	"Tower 9 B1",
}

// IsPickupSpot reports whether name is one of PickupSpots.
func IsPickupSpot(name string) bool {
	for _, s := range PickupSpots {
		if s == name {
			return true
		}
	}
	return false
}
