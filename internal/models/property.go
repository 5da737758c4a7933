package models

import (
	"fmt"
	"strings"
)

type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "Single Family"
	PropertyTypeCondo        PropertyType = "Condo"
	PropertyTypeTownhouse    PropertyType = "Townhouse"
	PropertyTypeMultiFamily  PropertyType = "Multi-Family"
	PropertyTypeCommercial   PropertyType = "Commercial"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeSingleFamily, PropertyTypeCondo, PropertyTypeTownhouse,
		PropertyTypeMultiFamily, PropertyTypeCommercial:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusForSale   ListingStatus = "For Sale"
	ListingStatusPending   ListingStatus = "Pending"
	ListingStatusOffMarket ListingStatus = "Off Market"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusForSale, ListingStatusPending, ListingStatusOffMarket:
		return true
	}
	return false
}

type Condition string

const (
	ConditionPoor      Condition = "Poor"
	ConditionFair      Condition = "Fair"
	ConditionGood      Condition = "Good"
	ConditionVeryGood  Condition = "Very Good"
	ConditionExcellent Condition = "Excellent"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionPoor, ConditionFair, ConditionGood, ConditionVeryGood, ConditionExcellent:
		return true
	}
	return false
}

// NeedsWork reports whether the condition usually justifies a repair discussion.
func (c Condition) NeedsWork() bool {
	return c == ConditionPoor || c == ConditionFair
}

// Address is a structured US street address
type Address struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required,len=2"`
	Zip    string `json:"zip" validate:"required"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.Zip)
}

// Normalized returns the lookup key used by caches and fixture sets.
func (a Address) Normalized() string {
	return strings.ToLower(a.String())
}

func (a Address) Location() Location {
	return Location{City: a.City, State: a.State, Zip: a.Zip}
}

type Location struct {
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zip"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Key identifies the market area a location belongs to.
func (l Location) Key() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s", l.City, l.State, l.Zip))
}

// PropertyRecord holds the provider's view of a single property. It is not
// modified once an analysis has started.
type PropertyRecord struct {
	Address           Address       `json:"address" validate:"required"`
	PropertyType      PropertyType  `json:"property_type"`
	Bedrooms          int           `json:"bedrooms" validate:"gte=0"`
	Bathrooms         float64       `json:"bathrooms" validate:"gte=0"`
	SquareFeet        float64       `json:"square_feet" validate:"gte=0"`
	LotSize           float64       `json:"lot_size" validate:"gte=0"`
	YearBuilt         int           `json:"year_built" validate:"gte=0"`
	ListingPrice      *float64      `json:"listing_price,omitempty" validate:"omitempty,gt=0"`
	OriginalListPrice *float64      `json:"original_list_price,omitempty" validate:"omitempty,gt=0"`
	PriceCutCount     *int          `json:"price_cut_count,omitempty" validate:"omitempty,gte=0"`
	DaysOnMarket      int           `json:"days_on_market" validate:"gte=0"`
	ListingStatus     ListingStatus `json:"listing_status"`
	Condition         Condition     `json:"condition"`
	AnnualTaxAmount   *float64      `json:"annual_tax_amount,omitempty" validate:"omitempty,gte=0"`
	HOAFee            float64       `json:"hoa_fee" validate:"gte=0"`
	Latitude          *float64      `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude         *float64      `json:"longitude,omitempty" validate:"omitempty,longitude"`
	SellerNotes       []string      `json:"seller_notes,omitempty"`
}

// IsListed reports whether the property carries an asking price.
func (p *PropertyRecord) IsListed() bool {
	return p.ListingPrice != nil && *p.ListingPrice > 0
}

// Comparable is a recently sold property near the subject.
type Comparable struct {
	Address    Address  `json:"address" validate:"required"`
	SalePrice  float64  `json:"sale_price" validate:"gt=0"`
	Bedrooms   int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms  float64  `json:"bathrooms" validate:"gte=0"`
	SquareFeet float64  `json:"square_feet" validate:"gte=0"`
	YearBuilt  int      `json:"year_built" validate:"gte=0"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Float returns a pointer to v. Used for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
