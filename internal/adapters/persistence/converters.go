package persistence

import (
	"github.com/shopspring/decimal"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// coordToDecimals splits a coordinate into decimal(9,6) columns
func coordToDecimals(c *shared.Coordinate) (*decimal.Decimal, *decimal.Decimal) {
	if c == nil {
		return nil, nil
	}
	lat := decimal.NewFromFloat(c.Lat).Round(6)
	lng := decimal.NewFromFloat(c.Lng).Round(6)
	return &lat, &lng
}

// decimalsToCoord rebuilds a coordinate; either column nil means absent
func decimalsToCoord(lat, lng *decimal.Decimal) *shared.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	latF, _ := lat.Float64()
	lngF, _ := lng.Float64()
	return &shared.Coordinate{Lat: latF, Lng: lngF}
}
