package prayer

import (
	"errors"
	"fmt"
	"math"

	"github.com/generic19/FastersApp/internal/method"
)

// ErrInvalidSettings is returned when a method setting cannot be resolved.
var ErrInvalidSettings = errors.New("invalid calculation settings")

// MaxIshaOffset is the largest Isha offset after Maghrib, in minutes.
const MaxIshaOffset = 24 * 60

// MethodSetting is the user's choice of calculation parameters: Automatic or
// Manual.
type MethodSetting interface {
	isMethodSetting()
}

// Automatic picks the registry method for the location's country.
type Automatic struct{}

// Fixed always uses one registry method regardless of country.
type Fixed struct {
	Method method.Method
	Shafai bool
}

// Manual carries user-chosen parameters. RamadanOffset, when set, replaces a
// fixed Isha offset during Ramadan.
type Manual struct {
	FajrAngle     float64
	Shafai        bool
	Isha          IshaSpec
	RamadanOffset *int
}

func (Automatic) isMethodSetting() {}
func (Fixed) isMethodSetting()     {}
func (Manual) isMethodSetting()    {}

// Resolve turns a setting into concrete parameters for a location in country.
func Resolve(setting MethodSetting, country string, isRamadan bool) (Parameters, error) {
	switch s := setting.(type) {
	case Automatic:
		return ParametersForMethod(method.ForCountry(country), isRamadan, false), nil
	case Fixed:
		if !s.Method.Valid() {
			return Parameters{}, fmt.Errorf("%w: unknown method %v", ErrInvalidSettings, s.Method)
		}
		return ParametersForMethod(s.Method, isRamadan, s.Shafai), nil
	case Manual:
		return s.resolve(isRamadan)
	default:
		return Parameters{}, fmt.Errorf("%w: no method selected", ErrInvalidSettings)
	}
}

func (m Manual) resolve(isRamadan bool) (Parameters, error) {
	if !finite(m.FajrAngle) {
		return Parameters{}, fmt.Errorf("%w: fajr angle is not a number", ErrInvalidSettings)
	}

	p := Parameters{FajrAngle: m.FajrAngle, Shafai: m.Shafai}
	switch isha := m.Isha.(type) {
	case IshaAngle:
		if !finite(isha.Degrees) {
			return Parameters{}, fmt.Errorf("%w: isha angle is not a number", ErrInvalidSettings)
		}
		p.Isha = isha
	case IshaOffset:
		minutes := isha.Minutes
		if isRamadan && m.RamadanOffset != nil {
			minutes = *m.RamadanOffset
		}
		if minutes < 0 || minutes > MaxIshaOffset {
			return Parameters{}, fmt.Errorf("%w: isha offset %d outside 0-%d minutes", ErrInvalidSettings, minutes, MaxIshaOffset)
		}
		p.Isha = IshaOffset{Minutes: minutes}
	default:
		return Parameters{}, fmt.Errorf("%w: isha rule missing", ErrInvalidSettings)
	}
	return p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
