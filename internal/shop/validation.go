package shop

// validation.go checks manual admin entry and checkout input.
//
// Validation failures are reported per field so the caller can show them
// next to the offending input. A non-nil ValidationErrors always means no
// state was changed.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError is a problem with a single input field.
type ValidationError struct {
	Field   string // Input field name
	Value   string // The rejected value, if useful to echo back
	Message string // Human-readable message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects field errors. It implements error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the first error for field, if any.
func (v ValidationErrors) Field(field string) (ValidationError, bool) {
	for _, e := range v {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}

// OrNil returns nil when there are no errors so callers can return it as error.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

var (
	// customerNamePattern allows Latin and Ukrainian letters, spaces and hyphens.
	customerNamePattern = regexp.MustCompile(`^[a-zA-Zа-яА-ЯіїєґІЇЄҐ\s'’-]+$`)

	// customerPhonePattern is +380 followed by exactly nine digits.
	customerPhonePattern = regexp.MustCompile(`^\+380\d{9}$`)
)

// CheckoutInput is what a customer submits at checkout.
type CheckoutInput struct {
	Name  string
	Phone string
	Lines []CheckoutLine
}

// CheckoutLine requests qty units of the toy with ToyID.
type CheckoutLine struct {
	ToyID    string `json:"toyId"`
	Quantity int    `json:"quantity"`
}

// ValidateCheckout checks customer details and the requested lines.
func ValidateCheckout(in CheckoutInput) ValidationErrors {
	var errs ValidationErrors

	name := strings.TrimSpace(in.Name)
	switch {
	case len([]rune(name)) < 2:
		errs = append(errs, ValidationError{Field: "name", Value: in.Name, Message: "enter a valid name"})
	case !customerNamePattern.MatchString(name):
		errs = append(errs, ValidationError{Field: "name", Value: in.Name, Message: "name may contain only letters, spaces and hyphens"})
	}

	if !customerPhonePattern.MatchString(strings.TrimSpace(in.Phone)) {
		errs = append(errs, ValidationError{Field: "phone", Value: in.Phone, Message: "phone must be +380 followed by 9 digits"})
	}

	if len(in.Lines) == 0 {
		errs = append(errs, ValidationError{Field: "items", Message: "cart is empty"})
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ToyID) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("items[%d].toyId", i), Message: "toy id is required"})
		}
	}

	return errs
}

// ToyInput is the admin form for creating or editing a catalog entry.
type ToyInput struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Category      string           `json:"category"`
	AgeRange      string           `json:"ageRange"`
	Images        []string         `json:"images"`
	Description   string           `json:"description"`
}

// Validate checks the required fields.
func (in ToyInput) Validate() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "required field is empty"})
	}
	switch {
	case in.Price == nil:
		errs = append(errs, ValidationError{Field: "price", Message: "required field is empty"})
	case !in.Price.IsPositive():
		errs = append(errs, ValidationError{Field: "price", Value: in.Price.String(), Message: "price must be greater than zero"})
	}
	return errs
}

// Build validates the input and produces a Toy with id, applying defaults:
// age "3+", the placeholder image, and the name as description. A discount
// that is not strictly below the price is dropped.
func (in ToyInput) Build(id string) (Toy, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return Toy{}, errs
	}

	t := Toy{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Price:       *in.Price,
		Category:    strings.TrimSpace(in.Category),
		AgeRange:    strings.TrimSpace(in.AgeRange),
		Description: strings.TrimSpace(in.Description),
	}
	if t.Category == "" {
		t.Category = AllCategoryID
	}
	if t.AgeRange == "" {
		t.AgeRange = DefaultAgeRange
	}
	if t.Description == "" {
		t.Description = t.Name
	}
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			t.Images = append(t.Images, img)
		}
	}
	if len(t.Images) == 0 {
		t.Images = []string{DefaultToyImage}
	}
	if in.DiscountPrice != nil {
		d := *in.DiscountPrice
		t.DiscountPrice = &d
		if !t.HasDiscount() {
			t.DiscountPrice = nil
		}
	}
	return t, nil
}

// ValidateCategoryName checks a new category name.
func ValidateCategoryName(name string) ValidationErrors {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationErrors{{Field: "name", Message: "required field is empty"}}
	}
	if id := CategoryID(name); id == AllCategoryID || id == DiscountCategoryID {
		return ValidationErrors{{Field: "name", Value: name, Message: "name is reserved"}}
	}
	return nil
}
