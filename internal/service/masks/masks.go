// Package masks converts between the masked text of numeric form inputs and numbers.
package masks

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mamadbah2/optica/internal/domain/models"
)

const currencySymbol = "R$"

var (
	groupedMoney = regexp.MustCompile(`^\d{1,3}(\.\d{3})*(,\d{1,2})?$`)
	commaMoney   = regexp.MustCompile(`^\d+(,\d{1,2})?$`)
	dotDecimal   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

var (
	ErrNotANumber = errors.New("not a number")
	ErrNegative   = errors.New("must not be negative")
	ErrStep       = errors.New("must be a multiple of 0.25")
	ErrRange      = errors.New("out of range")
)

// Prescription ranges.
const (
	SphereMin, SphereMax     = -30.0, 30.0
	CylinderMin, CylinderMax = -10.0, 10.0
	AdditionMin, AdditionMax = 0.0, 4.0
	AxisMin, AxisMax         = 0, 180
	DnpMin, DnpMax           = 20.0, 40.0
	HeightMin, HeightMax     = 10.0, 40.0
)

// RoundCents rounds a money value to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// DigitsOnly strips every non digit rune, as phone and document masks do.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseMoney reads a masked currency value such as "R$ 1.234,56".
// Accepted shapes are "1.234,56" (dot grouping, comma decimals), "1234,56" and "1234.56".
// Empty input is zero.
func ParseMoney(s string) (float64, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), currencySymbol))
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, nil
	}
	if strings.HasPrefix(raw, "-") {
		return 0, ErrNegative
	}

	switch {
	case groupedMoney.MatchString(raw), commaMoney.MatchString(raw):
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case dotDecimal.MatchString(raw):
	default:
		return 0, fmt.Errorf("money %q: %w", s, ErrNotANumber)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("money %q: %w", s, ErrNotANumber)
	}
	return RoundCents(v), nil
}

// FormatMoney renders v as "R$ 1.234,50".
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	return fmt.Sprintf("%s%s %s,%02d", sign, currencySymbol, grouped.String(), cents%100)
}

// ParseDiopter reads a signed diopter value in 0.25 steps. Empty input is zero.
func ParseDiopter(s string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("diopter %q: %w", s, ErrNotANumber)
	}
	if !onQuarterStep(v) {
		return 0, fmt.Errorf("diopter %q: %w", s, ErrStep)
	}
	return v, nil
}

// FormatDiopter renders a diopter with explicit sign: "+1.25", "-0.50", "0.00".
func FormatDiopter(v float64) string {
	if v == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", v)
}

// ParseAxis reads a cylinder axis in degrees.
func ParseAxis(s string) (int, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "°")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("axis %q: %w", s, ErrNotANumber)
	}
	if v < AxisMin || v > AxisMax {
		return 0, fmt.Errorf("axis %d: %w", v, ErrRange)
	}
	return v, nil
}

// ParseQuantity reads a positive integer quantity.
func ParseQuantity(s string) (int, error) {
	v, err := strconv.Atoi(DigitsOnly(s))
	if err != nil || DigitsOnly(s) != strings.TrimSpace(s) {
		return 0, fmt.Errorf("quantity %q: %w", s, ErrNotANumber)
	}
	if v <= 0 {
		return 0, fmt.Errorf("quantity %d: %w", v, ErrRange)
	}
	return v, nil
}

// ParseMillimeters reads a measure such as "31,5" or "31.5". Empty input is zero.
func ParseMillimeters(s string) (float64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "mm")
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, nil
	}
	if !dotDecimal.MatchString(raw) {
		return 0, fmt.Errorf("measure %q: %w", s, ErrNotANumber)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("measure %q: %w", s, ErrNotANumber)
	}
	return v, nil
}

// ValidateEye checks one eye of a prescription against the accepted ranges.
func ValidateEye(e models.EyePrescription) error {
	var errs models.ValidationErrors

	checkDiopter(&errs, "sphere", e.Sphere, SphereMin, SphereMax)
	checkDiopter(&errs, "cylinder", e.Cylinder, CylinderMin, CylinderMax)
	checkDiopter(&errs, "addition", e.Addition, AdditionMin, AdditionMax)

	if e.Axis < AxisMin || e.Axis > AxisMax {
		errs.Add("axis", fmt.Sprintf("must be between %d and %d", AxisMin, AxisMax))
	}
	if e.Dnp != 0 && (e.Dnp < DnpMin || e.Dnp > DnpMax) {
		errs.Add("dnp", fmt.Sprintf("must be between %.0f and %.0f mm", DnpMin, DnpMax))
	}
	if e.Height != 0 && (e.Height < HeightMin || e.Height > HeightMax) {
		errs.Add("height", fmt.Sprintf("must be between %.0f and %.0f mm", HeightMin, HeightMax))
	}

	return errs.Err()
}

// ValidatePrescription checks both eyes and the owning client.
func ValidatePrescription(p models.Prescription) error {
	var errs models.ValidationErrors
	if p.ClientID <= 0 {
		errs.Add("clientId", "is required")
	}
	errs.Merge("rightEye", ValidateEye(p.RightEye))
	errs.Merge("leftEye", ValidateEye(p.LeftEye))
	return errs.Err()
}

func checkDiopter(errs *models.ValidationErrors, field string, v, lo, hi float64) {
	if v < lo || v > hi {
		errs.Add(field, fmt.Sprintf("must be between %s and %s", FormatDiopter(lo), FormatDiopter(hi)))
		return
	}
	if !onQuarterStep(v) {
		errs.Add(field, ErrStep.Error())
	}
}

func onQuarterStep(v float64) bool {
	q := v * 4
	return math.Abs(q-math.Round(q)) < 1e-9
}

// Money is a form amount that decodes from a JSON number or a masked string.
type Money float64

// UnmarshalJSON accepts 12.5, "12,50" and "R$ 12,50".
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("money %s: %w", raw, ErrNotANumber)
		}
		v, err := ParseMoney(unquoted)
		if err != nil {
			return err
		}
		*m = Money(v)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("money %s: %w", raw, ErrNotANumber)
	}
	if v < 0 {
		return ErrNegative
	}
	*m = Money(RoundCents(v))
	return nil
}

// Diopter is a form value that decodes from a JSON number or a masked string such as "+1,25".
type Diopter float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Diopter) UnmarshalJSON(data []byte) error {
	v, err := decodeMasked(data, ParseDiopter)
	*d = Diopter(v)
	return err
}

// Axis is a form value that decodes from a JSON number or a string such as "90°".
type Axis int

// UnmarshalJSON implements json.Unmarshaler.
func (a *Axis) UnmarshalJSON(data []byte) error {
	v, err := decodeMasked(data, ParseAxis)
	*a = Axis(v)
	return err
}

// Quantity is a positive form quantity that decodes from a JSON number or a string.
type Quantity int

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	v, err := decodeMasked(data, ParseQuantity)
	*q = Quantity(v)
	return err
}

// Millimeters is a form measure that decodes from a JSON number or a string such as "31,5".
type Millimeters float64

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millimeters) UnmarshalJSON(data []byte) error {
	v, err := decodeMasked(data, ParseMillimeters)
	*m = Millimeters(v)
	return err
}

// decodeMasked feeds the text of a JSON string, or the literal of a JSON number, to parse.
// null decodes to the zero value.
func decodeMasked[T any](data []byte, parse func(string) (T, error)) (T, error) {
	var zero T
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return zero, nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return zero, fmt.Errorf("%s: %w", raw, ErrNotANumber)
		}
		raw = unquoted
	}
	return parse(raw)
}
