package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
)

type Period string

const (
	Last7Days  Period = "7d"
	Last30Days Period = "30d"
	Last90Days Period = "90d"
	AllTime    Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Last7Days, Last30Days, Last90Days, AllTime:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

func (p Period) days() int {
	switch p {
	case Last7Days:
		return 7
	case Last30Days:
		return 30
	case Last90Days:
		return 90
	}
	return 0
}

type SortOrder string

const (
	DateDesc  SortOrder = "date_desc"
	DateAsc   SortOrder = "date_asc"
	ValueDesc SortOrder = "value_desc"
	ValueAsc  SortOrder = "value_asc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case DateDesc, DateAsc, ValueDesc, ValueAsc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// History returns completed and archived lists created within period of now,
// sorted by order. Unknown orders sort newest first.
func History(lists []domain.ShoppingList, period Period, order SortOrder, now time.Time) []domain.ShoppingList {
	var since time.Time
	if d := period.days(); d > 0 {
		since = now.AddDate(0, 0, -d)
	}

	var out []domain.ShoppingList
	for _, l := range lists {
		if l.Status != domain.StatusCompleted && l.Status != domain.StatusArchived {
			continue
		}
		if !since.IsZero() && l.CreatedAt.Before(since) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(a, b int) bool {
		switch order {
		case DateAsc:
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		case ValueDesc:
			return ListTotal(out[a]) > ListTotal(out[b])
		case ValueAsc:
			return ListTotal(out[a]) < ListTotal(out[b])
		default:
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
	})
	return out
}

// SearchLists filters by case-insensitive name substring, newest first.
func SearchLists(lists []domain.ShoppingList, query string) []domain.ShoppingList {
	q := strings.ToLower(query)
	var out []domain.ShoppingList
	for _, l := range lists {
		if strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

type CategoryGroup struct {
	Category string            `json:"category"`
	Items    []domain.ListItem `json:"items"`
}

// GroupItems sorts the list's items by order and groups them by category.
// Groups appear in the order of their first item. With hidePurchased only
// unpurchased items are kept.
func GroupItems(l domain.ShoppingList, hidePurchased bool) []CategoryGroup {
	items := make([]domain.ListItem, 0, len(l.Items))
	for _, it := range l.Items {
		if hidePurchased && it.IsPurchased {
			continue
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].Order < items[b].Order })

	var groups []CategoryGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, CategoryGroup{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

type Suggestion struct {
	Name      string  `json:"name"`
	LastPrice float64 `json:"lastPrice"`
}

// Suggestions offers previously bought items whose name contains query,
// each with its latest price. Queries shorter than two characters give
// nothing. Entries sharing a lower-cased name collapse into one, keeping the
// position of the first and the values of the last.
func Suggestions(history []domain.PriceHistoryEntry, query string, limit int) []Suggestion {
	if utf8.RuneCountInString(query) < 2 {
		return nil
	}

	var all []Suggestion
	index := make(map[string]int)
	for _, e := range history {
		latest, ok := e.Latest()
		if !ok {
			continue
		}
		s := Suggestion{Name: e.ItemName, LastPrice: latest.Price}
		k := strings.ToLower(e.ItemName)
		if i, ok := index[k]; ok {
			all[i] = s
			continue
		}
		index[k] = len(all)
		all = append(all, s)
	}

	q := strings.ToLower(query)
	var out []Suggestion
	for _, s := range all {
		if limit > 0 && len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// PriceEvolution returns the observations of the entry matching name under
// key (the default price key when nil), oldest first.
func PriceEvolution(history []domain.PriceHistoryEntry, name string, key mapper.PriceKey) []domain.PricePoint {
	if key == nil {
		key = mapper.DefaultPriceKey
	}
	k := key(name)
	for _, e := range history {
		if key(e.ItemName) != k {
			continue
		}
		points := append([]domain.PricePoint(nil), e.Prices...)
		sort.SliceStable(points, func(a, b int) bool { return points[a].Date.Before(points[b].Date) })
		return points
	}
	return nil
}
