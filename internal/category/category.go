// Package category guesses a shopping category from an item name. The
// service uses it to fill in items created without a category.
package category

import (
	"strings"
	"sync"
)

// Other is returned when nothing matches.
const Other = "Other"

type rule struct {
	category string
	keywords []string
}

// Rules are checked in order; within a rule, longer phrases come first so
// "peanut butter" wins over "butter".
var rules = []rule{
	{"Meat & Seafood", []string{
		"chicken breast", "ground beef", "ground turkey", "pork chop", "hot dog",
		"deli meat", "chicken", "beef", "pork", "turkey", "bacon", "sausage",
		"ham", "steak", "salmon", "shrimp", "tuna", "fish", "lamb",
	}},
	{"Pantry", []string{
		"peanut butter", "olive oil", "soy sauce", "tomato sauce", "maple syrup",
		"canned", "rice", "pasta", "noodle", "flour", "sugar", "salt", "oil",
		"vinegar", "cereal", "oat", "bean", "lentil", "soup", "broth", "honey",
		"coffee", "tea", "spice", "sauce",
	}},
	{"Dairy", []string{
		"cream cheese", "sour cream", "almond milk", "oat milk", "yogurt",
		"cheese", "milk", "butter", "cream", "egg",
	}},
	{"Frozen", []string{"ice cream", "frozen", "popsicle"}},
	{"Produce", []string{
		"sweet potato", "bell pepper", "lettuce", "spinach", "kale", "apple",
		"banana", "orange", "lemon", "lime", "avocado", "tomato", "potato",
		"onion", "garlic", "carrot", "celery", "cucumber", "broccoli",
		"grape", "berry", "berries", "melon", "mango", "pear", "peach",
		"herb", "fruit",
	}},
	{"Bakery", []string{
		"bread", "bagel", "tortilla", "bun", "roll", "muffin", "croissant", "cake",
	}},
	{"Beverages", []string{
		"sparkling water", "juice", "soda", "water", "beer", "wine", "drink",
	}},
	{"Snacks", []string{
		"granola bar", "trail mix", "chip", "cracker", "cookie", "popcorn",
		"pretzel", "candy", "chocolate", "snack",
	}},
	{"Household", []string{
		"paper towel", "toilet paper", "trash bag", "dish soap", "laundry",
		"detergent", "bleach", "sponge", "foil", "battery", "batteries",
		"light bulb", "napkin",
	}},
	{"Personal Care", []string{
		"body wash", "shampoo", "conditioner", "toothpaste", "toothbrush",
		"deodorant", "lotion", "sunscreen", "razor", "tissue", "soap",
	}},
}

var (
	exactOnce sync.Once
	exact     map[string]string
)

func exactIndex() map[string]string {
	exactOnce.Do(func() {
		exact = make(map[string]string)
		for _, r := range rules {
			for _, kw := range r.keywords {
				if _, ok := exact[kw]; !ok {
					exact[kw] = r.category
				}
				if _, ok := exact[kw+"s"]; !ok {
					exact[kw+"s"] = r.category
				}
			}
		}
	})
	return exact
}

// Guess returns the category for itemName: an exact keyword match (singular
// or plural) first, then the first rule with a keyword contained in the
// name. Matching is case-insensitive.
func Guess(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	if cat, ok := exactIndex()[name]; ok {
		return cat
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return Other
}

// Names returns every category Guess can produce, Other last.
func Names() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.category)
	}
	return append(names, Other)
}
