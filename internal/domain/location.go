package domain

// Locations are the campus drop points offered at checkout.
var Locations = []string{
	"Library Main Gate",
	"CS Dept Block B",
	"Girls Hostel 1",
	"Boys Hostel 2",
	"Admin Block",
	"Main Cafeteria",
}

func ValidLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}
