// README: Vehicle (driver) model and the fixed set of vehicle classes.
package fleet

import (
	"errors"
	"strings"

	"citycab/internal/types"
)

type Class string

const (
	ClassTwoWheeler Class = "2-wheeler"
	ClassSedan      Class = "4-seater"
	ClassVan        Class = "7-seater"
)

// Classes lists every bookable class, cheapest first.
var Classes = []Class{ClassTwoWheeler, ClassSedan, ClassVan}

var (
	ErrUnknownClass     = errors.New("unknown vehicle class")
	ErrDuplicateVehicle = errors.New("vehicle already registered")
	ErrNotFound         = errors.New("vehicle not found")
	ErrBadRequest       = errors.New("bad request")
)

// ParseClass accepts the canonical names plus the menu numbers and a few
// common aliases.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2-wheeler", "two-wheeler", "2wheeler", "bike", "1":
		return ClassTwoWheeler, nil
	case "4-seater", "sedan", "car", "2":
		return ClassSedan, nil
	case "7-seater", "van", "suv", "3":
		return ClassVan, nil
	}
	return "", ErrUnknownClass
}

func (c Class) Valid() bool {
	for _, k := range Classes {
		if c == k {
			return true
		}
	}
	return false
}

type Vehicle struct {
	ID        types.ID `json:"id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Class     Class    `json:"class"`
	Available bool     `json:"available"`
}

func (v Vehicle) validate() error {
	if v.ID == "" || strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Location) == "" {
		return ErrBadRequest
	}
	if !v.Class.Valid() {
		return ErrUnknownClass
	}
	return nil
}
