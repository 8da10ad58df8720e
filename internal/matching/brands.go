package matching

import (
	"bike-recommender/internal/models"
)

// commonBrands are allowed whatever region the rider picks.
var commonBrands = []string{
	"Honda", "Yamaha", "Kawasaki", "Suzuki", "BMW",
	"Ducati", "KTM", "Triumph", "Harley-Davidson",
}

var regionalBrands = map[models.Region][]string{
	models.RegionAsia: {
		"Royal Enfield", "Bajaj", "Hero", "TVS", "Kymco", "SYM",
		"CFMoto", "Benelli", "QJMotor", "Zongshen", "Lifan", "Loncin",
	},
	models.RegionEurope: {
		"Aprilia", "Moto Guzzi", "MV Agusta", "Husqvarna", "Beta",
		"GasGas", "Piaggio", "Vespa", "Norton", "BSA",
	},
	models.RegionNorthAmerica: {
		"Indian", "Zero", "Buell", "LiveWire", "Can-Am", "Arch",
	},
	models.RegionSouthAmerica: {
		"Zanella", "Motomel", "Dafra", "Corven", "Bajaj", "Royal Enfield",
	},
	models.RegionAfrica: {
		"Bajaj", "TVS", "Haojue", "Lifan", "Skygo",
	},
	models.RegionAustralia: {
		"Indian", "Royal Enfield", "Husqvarna", "Aprilia", "Moto Guzzi", "CFMoto", "Zero",
	},
}

// fullUniverse is every brand the table knows, common brands first.
var fullUniverse = func() []string {
	out := appendUnique(nil, commonBrands...)
	for _, region := range models.Regions() {
		out = appendUnique(out, regionalBrands[region]...)
	}
	return out
}()

// CommonBrands returns a copy of the baseline brand list.
func CommonBrands() []string {
	return appendUnique(nil, commonBrands...)
}

// AllBrands returns a copy of the full brand universe.
func AllBrands() []string {
	return appendUnique(nil, fullUniverse...)
}

// BrandsForRegion returns the allow-list for a region: the common brands
// followed by the region's own. An unknown or blank region has no
// restriction and gets the full universe.
func BrandsForRegion(region models.Region) []string {
	extra, ok := regionalBrands[region]
	if !ok {
		return AllBrands()
	}
	out := appendUnique(nil, commonBrands...)
	return appendUnique(out, extra...)
}

func appendUnique(dst []string, values ...string) []string {
	if dst == nil {
		dst = []string{}
	}
	seen := make(map[string]bool, len(dst)+len(values))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			dst = append(dst, v)
			seen[v] = true
		}
	}
	return dst
}
