package handlers

import (
	"math"
	"sort"

	"github.com/iudanet/rentspace/internal/models"
)

const earthRadiusKM = 6371.0

// haversineKM расстояние между точками по дуге большого круга в километрах
func haversineKM(a, b models.GeoPoint) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// nearest сортирует объявления по удалению от origin.
// maxKM <= 0 снимает ограничение по расстоянию.
func nearest(props []*models.Property, origin models.GeoPoint, maxKM float64) []models.NearbyProperty {
	out := make([]models.NearbyProperty, 0, len(props))
	for _, p := range props {
		d := haversineKM(origin, p.Location)
		if maxKM > 0 && d > maxKM {
			continue
		}
		out = append(out, models.NearbyProperty{Property: *p, DistanceKM: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})

	return out
}

// paginate возвращает срез page-й страницы размера limit
func paginate[T any](items []T, page, limit int) []T {
	// page-1 <= (len-1)/limit: страница существует, смещение не переполняется
	if len(items) == 0 || page < 1 || limit < 1 || page-1 > (len(items)-1)/limit {
		return []T{}
	}
	start := (page - 1) * limit
	end := len(items)
	if limit < end-start {
		end = start + limit
	}
	return items[start:end]
}
