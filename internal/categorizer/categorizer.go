// Package categorizer classifies free-text expense descriptions into a fixed
// taxonomy by keyword matching.
//
// Matching is first-match, not best-match: categories are scanned in the
// order of the table below and the first one with any keyword contained in
// the lowercased description wins. Overlapping keywords are therefore
// resolved purely by category order. For example "gas" appears under both
// transportation and utilities, and "gas bill" is transportation.
package categorizer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/settleup/internal/money"
)

// Category is one entry of the expense taxonomy.
type Category struct {
	ID            string
	Name          string
	Keywords      []string
	Subcategories []string
}

// Category IDs.
const (
	Transportation = "transportation"
	Food           = "food"
	Shopping       = "shopping"
	Utilities      = "utilities"
	Travel         = "travel"
	Entertainment  = "entertainment"
	Healthcare     = "healthcare"
	Gifts          = "gifts"
	Education      = "education"
	Business       = "business"
	Other          = "other"
)

// DefaultSuggestionLimit is the number of suggestions returned when the
// caller does not ask for a specific limit.
const DefaultSuggestionLimit = 3

var other = Category{ID: Other, Name: "Other"}

// categories is in priority order. Do not reorder without updating callers'
// expectations: precedence is part of the matching contract.
var categories = []Category{
	{
		ID:   Transportation,
		Name: "Transportation",
		Keywords: []string{
			"uber", "lyft", "taxi", "cab", "bus", "train", "metro", "subway",
			"car", "gas", "fuel", "parking", "toll", "bike", "scooter",
			"transport", "commute", "ride",
		},
		Subcategories: []string{"Rideshare", "Public Transit", "Gas", "Parking"},
	},
	{
		ID:   Food,
		Name: "Food & Dining",
		Keywords: []string{
			"restaurant", "food", "lunch", "dinner", "breakfast", "coffee", "cafe",
			"bar", "pub", "pizza", "burger", "sushi", "groceries", "grocery",
			"supermarket", "market", "snack", "drink", "beverage", "meal",
			"dining", "takeout", "delivery", "doordash", "ubereats", "grubhub",
		},
		Subcategories: []string{"Restaurants", "Groceries", "Coffee", "Delivery", "Alcohol"},
	},
	{
		ID:   Shopping,
		Name: "Shopping",
		Keywords: []string{
			"shopping", "clothes", "clothing", "shoes", "electronics", "amazon",
			"store", "mall", "purchase", "buy", "retail", "online", "ebay",
			"target", "walmart", "costco", "books", "furniture", "home", "decor",
		},
		Subcategories: []string{"Clothing", "Electronics", "Home & Garden", "Books", "Online"},
	},
	{
		ID:   Utilities,
		Name: "Utilities",
		Keywords: []string{
			"electricity", "electric", "power", "water", "gas", "internet", "wifi",
			"phone", "mobile", "cable", "utility", "bill", "rent", "mortgage",
			"insurance", "heating", "cooling",
		},
		Subcategories: []string{"Electricity", "Water", "Internet", "Phone", "Rent"},
	},
	{
		ID:   Travel,
		Name: "Travel",
		Keywords: []string{
			"hotel", "accommodation", "airbnb", "vacation", "trip", "travel",
			"flight", "airline", "booking", "resort", "hostel", "motel", "lodge",
			"cruise", "tour", "sightseeing", "visa", "passport",
		},
		Subcategories: []string{"Hotels", "Flights", "Activities", "Visa/Documents"},
	},
	{
		ID:   Entertainment,
		Name: "Entertainment",
		Keywords: []string{
			"movie", "cinema", "theater", "concert", "show", "game", "gaming",
			"party", "club", "entertainment", "fun", "activity", "sport", "gym",
			"fitness", "netflix", "spotify", "subscription", "streaming",
		},
		Subcategories: []string{"Movies", "Concerts", "Gaming", "Sports", "Subscriptions"},
	},
	{
		ID:   Healthcare,
		Name: "Healthcare",
		Keywords: []string{
			"doctor", "hospital", "medical", "medicine", "pharmacy", "health",
			"dental", "dentist", "clinic", "checkup", "prescription", "treatment",
			"therapy", "surgery", "emergency",
		},
		Subcategories: []string{"Doctor Visits", "Medications", "Dental", "Emergency"},
	},
	{
		ID:   Gifts,
		Name: "Gifts",
		Keywords: []string{
			"gift", "present", "birthday", "anniversary", "wedding", "christmas",
			"holiday", "donation", "charity", "tip", "gratuity", "surprise",
		},
		Subcategories: []string{"Birthday", "Holiday", "Wedding", "Donations"},
	},
	{
		ID:   Education,
		Name: "Education",
		Keywords: []string{
			"school", "education", "tuition", "course", "class", "book",
			"textbook", "supplies", "university", "college", "training",
			"workshop", "seminar", "certification",
		},
		Subcategories: []string{"Tuition", "Books", "Supplies", "Online Courses"},
	},
	{
		ID:   Business,
		Name: "Business",
		Keywords: []string{
			"business", "work", "office", "meeting", "conference", "supplies",
			"equipment", "software", "service", "professional", "consulting",
			"freelance",
		},
		Subcategories: []string{"Office Supplies", "Software", "Consulting", "Equipment"},
	},
}

// All returns the categories in priority order, excluding Other.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ByID looks up a category. Other is always found.
func ByID(id string) (Category, bool) {
	if id == Other {
		return other, true
	}
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Label returns the display name for id, or the Other label if unknown.
func Label(id string) string {
	if c, ok := ByID(id); ok {
		return c.Name
	}
	return other.Name
}

// Categorize returns the first category, in priority order, with a keyword
// contained in the description. Matching ignores case and surrounding
// whitespace. Descriptions matching nothing are Other.
func Categorize(description string) Category {
	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" {
		return other
	}
	for _, c := range categories {
		for _, kw := range c.Keywords {
			if strings.Contains(normalized, kw) {
				return c
			}
		}
	}
	return other
}

// Suggest returns up to limit categories having a keyword that contains the
// partial input, in priority order. Inputs shorter than two characters yield
// nothing. A non-positive limit means DefaultSuggestionLimit.
func Suggest(partial string, limit int) []Category {
	normalized := strings.ToLower(strings.TrimSpace(partial))
	if utf8.RuneCountInString(normalized) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	var matches []Category
	for _, c := range categories {
		for _, kw := range c.Keywords {
			if strings.Contains(kw, normalized) {
				matches = append(matches, c)
				break
			}
		}
		if len(matches) == limit {
			break
		}
	}
	return matches
}

// Entry is a described amount to be analyzed.
type Entry struct {
	Description string
	Amount      money.Cents
}

// CategoryTotal aggregates the entries falling into one category.
type CategoryTotal struct {
	Category Category
	Total    money.Cents
	Count    int
}

// Share returns the total as a percentage of grandTotal.
func (ct CategoryTotal) Share(grandTotal money.Cents) float64 {
	if grandTotal == 0 {
		return 0
	}
	return float64(ct.Total) / float64(grandTotal) * 100
}

// AnalyzeSpending groups entries by category and returns the groups sorted
// by descending total. Categories with equal totals keep priority order,
// with Other last.
func AnalyzeSpending(entries []Entry) []CategoryTotal {
	rank := make(map[string]int, len(categories)+1)
	for i, c := range categories {
		rank[c.ID] = i
	}
	rank[Other] = len(categories)

	byID := make(map[string]*CategoryTotal)
	for _, e := range entries {
		c := Categorize(e.Description)
		ct, ok := byID[c.ID]
		if !ok {
			ct = &CategoryTotal{Category: c}
			byID[c.ID] = ct
		}
		ct.Total += e.Amount
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return rank[out[i].Category.ID] < rank[out[j].Category.ID]
	})
	return out
}

// GrandTotal sums the totals of a breakdown.
func GrandTotal(totals []CategoryTotal) money.Cents {
	var sum money.Cents
	for _, t := range totals {
		sum += t.Total
	}
	return sum
}
