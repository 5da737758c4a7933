package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"estatewise/server/internal/models"
)

// ComparableMap builds a FeatureCollection with the subject property, every
// located comparable and, when at least three comparables are located, the
// convex hull they span.
func ComparableMap(result *models.AnalysisResult) (*geojson.FeatureCollection, error) {
	if result == nil {
		return nil, models.ValidationError("analysis result is required")
	}

	fc := geojson.NewFeatureCollection()

	if p := result.Property; p.Latitude != nil && p.Longitude != nil {
		subject := geojson.NewFeature(orb.Point{*p.Longitude, *p.Latitude})
		subject.Properties = geojson.Properties{
			"role":        "subject",
			"address":     p.Address.String(),
			"final_value": result.Valuation.FinalValue,
		}
		if p.ListingPrice != nil {
			subject.Properties["listing_price"] = *p.ListingPrice
		}
		fc.Append(subject)
	}

	if result.CMAResults == nil {
		if len(fc.Features) == 0 {
			return nil, models.InsufficientDataError("analysis has no located properties")
		}
		return fc, nil
	}

	var points []orb.Point
	for _, adj := range result.CMAResults.ComparableProperties {
		comp := adj.Comparable
		if comp.Latitude == nil || comp.Longitude == nil {
			continue
		}
		pt := orb.Point{*comp.Longitude, *comp.Latitude}
		points = append(points, pt)

		feature := geojson.NewFeature(pt)
		feature.Properties = geojson.Properties{
			"role":           "comparable",
			"address":        comp.Address.String(),
			"sale_price":     comp.SalePrice,
			"adjusted_price": adj.AdjustedPrice,
		}
		if adj.DistanceMiles != nil {
			feature.Properties["distance_miles"] = *adj.DistanceMiles
		}
		fc.Append(feature)
	}

	if hull := ConvexHull(points); hull != nil {
		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"role":        "comparable_area",
			"point_count": len(points),
			"hull_type":   "convex",
		}
		fc.Append(feature)
	}

	if len(fc.Features) == 0 {
		return nil, models.InsufficientDataError("analysis has no located properties")
	}
	return fc, nil
}

// ConvexHull returns the closed counter-clockwise hull of points, or nil
// when fewer than three distinct, non-collinear points are given.
func ConvexHull(points []orb.Point) orb.Ring {
	pts := make([]orb.Point, 0, len(points))
	seen := make(map[orb.Point]bool, len(points))
	for _, p := range points {
		if !seen[p] {
			seen[p] = true
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return nil
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	// Monotone chain: lower hull then upper hull
	hull := make([]orb.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// hull already ends where it started
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
