// README: Default fleet and the coverage rules that keep every class bookable.
package fleet

import "citycab/internal/modules/citygraph"

// DefaultFleet seeds an empty fleet repository.
var DefaultFleet = []Vehicle{
	{ID: "9990010001", Name: "Ramesh", Location: "Connaught Place", Class: ClassTwoWheeler},
	{ID: "9990051112", Name: "Neha", Location: "Lajpat Nagar", Class: ClassTwoWheeler},
	{ID: "9991012223", Name: "Anil", Location: "RK Puram", Class: ClassSedan},
	{ID: "9992023334", Name: "Sita", Location: "Saket", Class: ClassVan},
	{ID: "9993034445", Name: "Aman", Location: "Jasola", Class: ClassSedan},
	{ID: "9994045556", Name: "Priya", Location: "Tilak Nagar", Class: ClassTwoWheeler},
	{ID: "9995056667", Name: "Deepak", Location: "Dwarka", Class: ClassSedan},
	{ID: "9996067778", Name: "Komal", Location: "Janakpuri", Class: ClassTwoWheeler},
	{ID: "9997078889", Name: "Manoj", Location: "Karol Bagh", Class: ClassVan},
	{ID: "9998089990", Name: "Tina", Location: "Green Park", Class: ClassTwoWheeler},
	{ID: "9999099999", Name: "Rahul", Location: "Saket", Class: ClassSedan},
	{ID: "9999098888", Name: "Vikram", Location: "Saket", Class: ClassVan},
	{ID: "9999097777", Name: "Sunita", Location: "Lajpat Nagar", Class: ClassVan},
}

// CoverageRule demands at least one available vehicle of Class, at Location
// when set. Fallback is registered when the rule is unmet.
type CoverageRule struct {
	Class    Class
	Location string
	Fallback Vehicle
}

var DefaultCoverage = []CoverageRule{
	{Class: ClassTwoWheeler, Fallback: DefaultFleet[0]},
	{Class: ClassSedan, Fallback: DefaultFleet[2]},
	{Class: ClassVan, Location: "Saket", Fallback: DefaultFleet[11]},
}

func (r CoverageRule) satisfiedBy(vehicles []Vehicle) bool {
	want := citygraph.Normalize(r.Location)
	for _, v := range vehicles {
		if !v.Available || v.Class != r.Class {
			continue
		}
		if want == "" || citygraph.Normalize(v.Location) == want {
			return true
		}
	}
	return false
}
