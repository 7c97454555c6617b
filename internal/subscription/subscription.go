// Package subscription prices and validates meal-delivery subscriptions.
package subscription

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"calorina/internal/shared"

	"github.com/oklog/ulid/v2"
)

// PlanType is the billing period.
type PlanType string

const (
	Weekly  PlanType = "weekly"
	Monthly PlanType = "monthly"
)

// Package is the set of meals delivered each day.
type Package string

const (
	LunchOnly      Package = "lunch"
	LunchAndDinner Package = "lunch_dinner"
	AllMeals       Package = "all"
)

// DeliveryTime is the preferred delivery window.
type DeliveryTime string

const (
	Morning DeliveryTime = "morning"
	Evening DeliveryTime = "evening"
)

// Currency of every price in the table.
const Currency = "JOD"

var prices = map[PlanType]map[Package]float64{
	Weekly:  {LunchOnly: 25, LunchAndDinner: 45, AllMeals: 60},
	Monthly: {LunchOnly: 90, LunchAndDinner: 170, AllMeals: 220},
}

// Governorate is a delivery region with its served areas.
type Governorate struct {
	Name  string   `json:"name"`
	Areas []string `json:"areas"`
}

// Governorates lists the delivery coverage.
var Governorates = []Governorate{
	{Name: "Amman", Areas: []string{"Abdoun", "Sweifieh", "Jabal Amman", "Dabouq"}},
	{Name: "Irbid", Areas: []string{"University Street", "Hakama Street", "City Center"}},
	{Name: "Zarqa", Areas: []string{"Zarqa al-Jadidah", "Awajan", "City Center"}},
	{Name: "Aqaba", Areas: []string{"City Center", "Tala Bay", "South Beach"}},
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

// Request is the subscription form.
type Request struct {
	PlanType     PlanType     `json:"planType"`
	Package      Package      `json:"mealPackage"`
	DeliveryTime DeliveryTime `json:"deliveryTime"`
	Governorate  string       `json:"governorate"`
	Area         string       `json:"area"`
	Phone        string       `json:"phone"`
}

// Validate checks every field of the request.
func (r Request) Validate() error {
	if _, ok := prices[r.PlanType]; !ok {
		return invalid("unknown plan type %q", r.PlanType)
	}
	if _, ok := prices[r.PlanType][r.Package]; !ok {
		return invalid("unknown meal package %q", r.Package)
	}
	if r.DeliveryTime != Morning && r.DeliveryTime != Evening {
		return invalid("unknown delivery time %q", r.DeliveryTime)
	}
	i := slices.IndexFunc(Governorates, func(g Governorate) bool { return g.Name == r.Governorate })
	if i < 0 {
		return invalid("unknown governorate %q", r.Governorate)
	}
	if !slices.Contains(Governorates[i].Areas, r.Area) {
		return invalid("area %q is not served in %s", r.Area, r.Governorate)
	}
	if !phonePattern.MatchString(strings.TrimSpace(r.Phone)) {
		return invalid("phone number %q is not valid", r.Phone)
	}
	return nil
}

// Price returns the price of the plan and package. It panics on a request
// that did not pass Validate.
func (r Request) Price() float64 {
	p, ok := prices[r.PlanType][r.Package]
	if !ok {
		panic(fmt.Sprintf("subscription: no price for %s/%s", r.PlanType, r.Package))
	}
	return p
}

// Subscription is a confirmed order.
type Subscription struct {
	OrderID   string    `json:"orderId"`
	Request   Request   `json:"request"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscribe validates r and issues an order with a sortable id.
func Subscribe(r Request, now time.Time) (Subscription, error) {
	r.Phone = strings.TrimSpace(r.Phone)
	if err := r.Validate(); err != nil {
		return Subscription{}, err
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to generate order id: %w", err)
	}
	return Subscription{
		OrderID:   id.String(),
		Request:   r,
		Price:     r.Price(),
		Currency:  Currency,
		CreatedAt: now,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{shared.ErrInvalidInput}, args...)...)
}
