package domain

// Tobacco is a user-owned catalog entry, optionally associated with a Category.
type Tobacco struct {
	CreatedAt  Timestamp `json:"created_at"`
	Brand      *string   `json:"brand"`
	CategoryID *int64    `json:"category_id"`
	Notes      *string   `json:"notes"`
	Category   *Category `json:"category"`
	Name       string    `json:"name"`
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
}

// BrandName returns the brand or an empty string when unset.
func (t Tobacco) BrandName() string {
	if t.Brand == nil {
		return ""
	}
	return *t.Brand
}

// Title formats the tobacco as "Name (Brand)" for lists.
func (t Tobacco) Title() string {
	if brand := t.BrandName(); brand != "" {
		return t.Name + " (" + brand + ")"
	}
	return t.Name
}

// BulkResult is the partition of a batch-create operation's outcomes.
// Every submitted entry lands in exactly one bucket.
type BulkResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Total returns the number of entries the backend accounted for.
func (r BulkResult) Total() int {
	return len(r.Added) + len(r.Skipped) + len(r.Errors)
}

// Accounts reports whether the result covers exactly n submitted entries.
func (r BulkResult) Accounts(n int) bool {
	return r.Total() == n
}
