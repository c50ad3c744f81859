package console

import (
	"slices"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-admin-console/components/listing"
)

type screenDef struct {
	name         Screen
	title        string
	route        string
	icon         string
	emptyMessage string
	columns      []Column
	filters      []FilterDef
	count        int
	canSort      func(key string) bool
	apply        func(listing.State) (listing.Page[Row], listing.State)
}

// bind closes a typed record set and schema over a row renderer so every
// screen runs through the same pipeline.
func bind[T any](records []T, schema listing.Schema[T], row func(T) Row) func(listing.State) (listing.Page[Row], listing.State) {
	return func(state listing.State) (listing.Page[Row], listing.State) {
		page, next := listing.Apply(state, records, schema)
		rows := make([]Row, len(page.Visible))
		for i, record := range page.Visible {
			rows[i] = row(record)
		}
		return listing.Page[Row]{
			Visible:    rows,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			Page:       page.Page,
			Limit:      page.Limit,
		}, next
	}
}

func columns[T any](schema listing.Schema[T], keys ...string) []Column {
	out := make([]Column, len(keys))
	for i, key := range keys {
		out[i] = Column{
			Key:      key,
			Label:    labelFor(key),
			Sortable: schema.CanSort(key),
		}
	}
	return out
}

// distinct collects the sorted set of values get yields over records.
func distinct[T any](records []T, get func(T) string) []FilterOption {
	seen := map[string]bool{}
	var values []string
	for _, r := range records {
		v := get(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	slices.Sort(values)
	out := []FilterOption{{Value: listing.Wildcard, Label: "All"}}
	for _, v := range values {
		out = append(out, FilterOption{Value: v, Label: labelFor(v)})
	}
	return out
}

// labelFor turns a field key or value such as "created_at" or
// "outOfStock" into a display label.
func labelFor(key string) string {
	words := strings.Split(strcase.ToSnake(key), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	label := strings.TrimSpace(strings.Join(words, " "))
	if label == "" {
		return key
	}
	return label
}

func newScreens(data Dataset) map[Screen]*screenDef {
	categoryOptions := []FilterOption{{Value: listing.Wildcard, Label: "All Categories"}}
	for _, c := range data.Categories {
		categoryOptions = append(categoryOptions, FilterOption{Value: c.ID, Label: c.Name})
	}

	screens := []*screenDef{
		{
			name:         ScreenUsers,
			title:        "Users",
			route:        "/users",
			icon:         "users",
			emptyMessage: "No users found. Try adjusting your filters.",
			columns:      columns(UserSchema, "name", "email", "phone", "role", "status", "created_at"),
			filters: []FilterDef{
				{Key: "status", Label: "Status", Options: distinct(data.Users, func(u User) string { return u.Status })},
				{Key: "role", Label: "Role", Options: distinct(data.Users, func(u User) string { return u.Role })},
			},
			count:   len(data.Users),
			canSort: UserSchema.CanSort,
			apply:   bind(data.Users, UserSchema, userRow),
		},
		{
			name:         ScreenProducts,
			title:        "Products",
			route:        "/products",
			icon:         "package",
			emptyMessage: "No products found. Try adjusting your filters.",
			columns:      columns(ProductSchema, "name", "sku", "category", "price", "stock", "status", "updated_at"),
			filters: []FilterDef{
				{Key: "status", Label: "Status", Options: distinct(data.Products, func(p Product) string { return p.Status })},
				{Key: "category", Label: "Category", Options: categoryOptions},
			},
			count:   len(data.Products),
			canSort: ProductSchema.CanSort,
			apply:   bind(data.Products, ProductSchema, productRow),
		},
		{
			name:         ScreenCategories,
			title:        "Categories",
			route:        "/categories",
			icon:         "folder-tree",
			emptyMessage: "No categories found. Try adjusting your filters.",
			columns:      columns(CategorySchema, "name", "slug", "description", "product_count", "status", "created_at"),
			filters: []FilterDef{
				{Key: "status", Label: "Status", Options: distinct(data.Categories, func(c Category) string { return c.Status })},
			},
			count:   len(data.Categories),
			canSort: CategorySchema.CanSort,
			apply:   bind(data.Categories, CategorySchema, categoryRow),
		},
		{
			name:         ScreenBookings,
			title:        "Bookings",
			route:        "/bookings",
			icon:         "calendar",
			emptyMessage: "No bookings found. Try adjusting your filters.",
			columns:      columns(BookingSchema, "id", "client_name", "car_model", "date", "amount", "payment_status", "status"),
			filters: []FilterDef{
				{Key: "status", Label: "Status", Options: distinct(data.Bookings, func(b Booking) string { return b.Status })},
				{Key: "payment_status", Label: "Payment", Options: distinct(data.Bookings, func(b Booking) string { return b.PaymentStatus })},
			},
			count:   len(data.Bookings),
			canSort: BookingSchema.CanSort,
			apply:   bind(data.Bookings, BookingSchema, bookingRow),
		},
	}

	out := make(map[Screen]*screenDef, len(screens))
	for _, s := range screens {
		out[s.name] = s
	}
	return out
}

// screenOrder is the order screens appear in menus and on the overview.
var screenOrder = []Screen{ScreenUsers, ScreenProducts, ScreenCategories, ScreenBookings}
