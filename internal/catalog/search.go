package catalog

import (
	"sort"
	"strings"

	"github.com/sajanbk/meatshop-golang/internal/models"
)

// Relevance tiers. This is a fixed scoring function over a handful of
// substring predicates, not an IR engine: an exact name match always beats a
// name substring match, which always beats a description match.
const (
	scoreExactName  = 3
	scoreNameSub    = 2
	scoreDescSub    = 1
	scoreIrrelevant = 0
)

// Score rates one product against a query. Matching is case-insensitive and
// considers both the English and Nepali names.
func Score(p *models.Product, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return scoreIrrelevant
	}

	name := strings.ToLower(p.Name)
	nameNp := strings.ToLower(p.NameNepali)
	if name == q || nameNp == q {
		return scoreExactName
	}
	if strings.Contains(name, q) || strings.Contains(nameNp, q) {
		return scoreNameSub
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		return scoreDescSub
	}
	return scoreIrrelevant
}

// Rank sorts products by descending score, breaking ties by name so the
// ordering is fully deterministic.
func Rank(products []models.Product, query string) {
	sort.SliceStable(products, func(i, j int) bool {
		si, sj := Score(&products[i], query), Score(&products[j], query)
		if si != sj {
			return si > sj
		}
		return products[i].Name < products[j].Name
	})
}
