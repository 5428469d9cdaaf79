// Package catalog holds the fixed list of partner waste companies. The
// catalog is reference data compiled into the binary; it is never created,
// mutated, or destroyed at runtime.
package catalog

import "strings"

// Company types.
const (
	TypeRecycling    = "recycling"
	TypeIncineration = "incineration"
)

// Company is a partner that collects or processes waste.
type Company struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Location  string   `json:"location"`
	Distance  string   `json:"distance"`
	Rating    float64  `json:"rating"`
	Verified  bool     `json:"verified"`
	Materials []string `json:"materials"`
	Phone     string   `json:"phone"`
}

var companies = []Company{
	{ID: 1, Name: "GreenCycle Ltd", Type: TypeRecycling, Location: "Nairobi", Distance: "2.1km", Rating: 4.8, Verified: true, Materials: []string{"Plastic", "Metal", "Glass"}, Phone: "+254 712 345 678"},
	{ID: 2, Name: "EcoFlame Industries", Type: TypeIncineration, Location: "Kiambu", Distance: "5.3km", Rating: 4.5, Verified: true, Materials: []string{"Medical waste", "Non-recyclable"}, Phone: "+254 723 456 789"},
	{ID: 3, Name: "CleanCity Recyclers", Type: TypeRecycling, Location: "Nairobi", Distance: "3.7km", Rating: 4.9, Verified: true, Materials: []string{"Paper", "Cardboard", "Plastic"}, Phone: "+254 734 567 890"},
	{ID: 4, Name: "SafeBurn Solutions", Type: TypeIncineration, Location: "Mombasa", Distance: "12km", Rating: 4.3, Verified: true, Materials: []string{"Hazardous", "Chemical waste"}, Phone: "+254 745 678 901"},
	{ID: 5, Name: "ReNew Materials Co", Type: TypeRecycling, Location: "Nakuru", Distance: "8.2km", Rating: 4.7, Verified: false, Materials: []string{"E-waste", "Batteries", "Metal"}, Phone: "+254 756 789 012"},
	{ID: 6, Name: "ThermalWaste Kenya", Type: TypeIncineration, Location: "Nairobi", Distance: "4.1km", Rating: 4.6, Verified: true, Materials: []string{"Industrial waste", "Organic"}, Phone: "+254 767 890 123"},
}

// All returns a copy of the full catalog.
func All() []Company {
	out := make([]Company, len(companies))
	copy(out, companies)
	return out
}

// ByID looks up a company by its catalog id.
func ByID(id int) (Company, bool) {
	for _, c := range companies {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}

// Filter returns companies matching the given type and/or material. Empty
// arguments match everything. Material matching is a case-insensitive
// substring check against the company's accepted materials.
func Filter(companyType, material string) []Company {
	var out []Company
	for _, c := range companies {
		if companyType != "" && c.Type != companyType {
			continue
		}
		if material != "" && !acceptsMaterial(c, material) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func acceptsMaterial(c Company, material string) bool {
	needle := strings.ToLower(material)
	for _, m := range c.Materials {
		if strings.Contains(strings.ToLower(m), needle) {
			return true
		}
	}
	return false
}
