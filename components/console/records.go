package console

import (
	"fmt"
	"time"

	"github.com/goliatone/go-admin-console/components/listing"
)

// User is an account managed from the users screen.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	FirstName string    `json:"first_name" yaml:"first_name"`
	LastName  string    `json:"last_name" yaml:"last_name"`
	Email     string    `json:"email" yaml:"email"`
	Phone     string    `json:"phone" yaml:"phone"`
	Role      string    `json:"role" yaml:"role"`
	Status    string    `json:"status" yaml:"status"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Name joins first and last name.
func (u User) Name() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Product is a catalog entry.
type Product struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	SKU        string    `json:"sku" yaml:"sku"`
	CategoryID string    `json:"category_id" yaml:"category_id"`
	Category   string    `json:"category" yaml:"category"`
	Price      float64   `json:"price" yaml:"price"`
	Stock      int       `json:"stock" yaml:"stock"`
	Status     string    `json:"status" yaml:"status"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Category groups products.
type Category struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Slug         string    `json:"slug" yaml:"slug"`
	Description  string    `json:"description" yaml:"description"`
	ProductCount int       `json:"product_count" yaml:"product_count"`
	Status       string    `json:"status" yaml:"status"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Booking is a car rental reservation.
type Booking struct {
	ID            string    `json:"id" yaml:"id"`
	ClientName    string    `json:"client_name" yaml:"client_name"`
	CarModel      string    `json:"car_model" yaml:"car_model"`
	Date          time.Time `json:"date" yaml:"date"`
	Amount        float64   `json:"amount" yaml:"amount"`
	Status        string    `json:"status" yaml:"status"`
	PaymentStatus string    `json:"payment_status" yaml:"payment_status"`
}

// UserSchema describes how the users screen searches, filters and sorts.
var UserSchema = listing.Schema[User]{
	Search: []listing.TextAccessor[User]{
		User.Name,
		func(u User) string { return u.Email },
		func(u User) string { return u.Phone },
	},
	Filters: map[string]listing.TextAccessor[User]{
		"status": func(u User) string { return u.Status },
		"role":   func(u User) string { return u.Role },
	},
	Sorts: map[string]listing.Comparator[User]{
		"name":       listing.StringKey(User.Name),
		"email":      listing.StringKey(func(u User) string { return u.Email }),
		"role":       listing.StringKey(func(u User) string { return u.Role }),
		"status":     listing.StringKey(func(u User) string { return u.Status }),
		"created_at": listing.TimeKey(func(u User) time.Time { return u.CreatedAt }),
	},
}

// ProductSchema describes the products screen.
var ProductSchema = listing.Schema[Product]{
	Search: []listing.TextAccessor[Product]{
		func(p Product) string { return p.Name },
		func(p Product) string { return p.SKU },
	},
	Filters: map[string]listing.TextAccessor[Product]{
		"status":   func(p Product) string { return p.Status },
		"category": func(p Product) string { return p.CategoryID },
	},
	Sorts: map[string]listing.Comparator[Product]{
		"name":       listing.StringKey(func(p Product) string { return p.Name }),
		"category":   listing.StringKey(func(p Product) string { return p.Category }),
		"price":      listing.NumberKey(func(p Product) float64 { return p.Price }),
		"stock":      listing.NumberKey(func(p Product) int { return p.Stock }),
		"status":     listing.StringKey(func(p Product) string { return p.Status }),
		"updated_at": listing.TimeKey(func(p Product) time.Time { return p.UpdatedAt }),
	},
}

// CategorySchema describes the categories screen.
var CategorySchema = listing.Schema[Category]{
	Search: []listing.TextAccessor[Category]{
		func(c Category) string { return c.Name },
		func(c Category) string { return c.Slug },
		func(c Category) string { return c.Description },
	},
	Filters: map[string]listing.TextAccessor[Category]{
		"status": func(c Category) string { return c.Status },
	},
	Sorts: map[string]listing.Comparator[Category]{
		"name":          listing.StringKey(func(c Category) string { return c.Name }),
		"product_count": listing.NumberKey(func(c Category) int { return c.ProductCount }),
		"created_at":    listing.TimeKey(func(c Category) time.Time { return c.CreatedAt }),
	},
}

// BookingSchema describes the bookings screen.
var BookingSchema = listing.Schema[Booking]{
	Search: []listing.TextAccessor[Booking]{
		func(b Booking) string { return b.ClientName },
		func(b Booking) string { return b.CarModel },
		func(b Booking) string { return b.ID },
	},
	Filters: map[string]listing.TextAccessor[Booking]{
		"status":         func(b Booking) string { return b.Status },
		"payment_status": func(b Booking) string { return b.PaymentStatus },
	},
	Sorts: map[string]listing.Comparator[Booking]{
		"client_name": listing.StringKey(func(b Booking) string { return b.ClientName }),
		"date":        listing.TimeKey(func(b Booking) time.Time { return b.Date }),
		"amount":      listing.NumberKey(func(b Booking) float64 { return b.Amount }),
		"status":      listing.StringKey(func(b Booking) string { return b.Status }),
	},
}

func userRow(u User) Row {
	return Row{
		"id":         u.ID,
		"name":       u.Name(),
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"status":     u.Status,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt.Format(time.DateOnly),
	}
}

func productRow(p Product) Row {
	return Row{
		"id":         p.ID,
		"name":       p.Name,
		"sku":        p.SKU,
		"category":   p.Category,
		"price":      formatMoney(p.Price),
		"stock":      p.Stock,
		"status":     p.Status,
		"updated_at": p.UpdatedAt.Format(time.DateOnly),
	}
}

func categoryRow(c Category) Row {
	return Row{
		"id":            c.ID,
		"name":          c.Name,
		"slug":          c.Slug,
		"description":   c.Description,
		"product_count": c.ProductCount,
		"status":        c.Status,
		"created_at":    c.CreatedAt.Format(time.DateOnly),
	}
}

func bookingRow(b Booking) Row {
	return Row{
		"id":             b.ID,
		"client_name":    b.ClientName,
		"car_model":      b.CarModel,
		"date":           b.Date.Format(time.DateOnly),
		"amount":         formatMoney(b.Amount),
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
