package catalog

import (
	"testing"

	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScoreTiers(t *testing.T) {
	p := models.Product{
		Name:        "Pork Belly",
		NameNepali:  "सुंगुरको भुँडी",
		Description: "Fresh local pork belly, skin on",
	}

	assert.Equal(t, 3, Score(&p, "pork belly"))
	assert.Equal(t, 3, Score(&p, "PORK BELLY"))
	assert.Equal(t, 3, Score(&p, "सुंगुरको भुँडी"))

	assert.Equal(t, 2, Score(&p, "pork"))
	assert.Equal(t, 2, Score(&p, "belly"))
	assert.Equal(t, 2, Score(&p, "सुंगुर"))

	assert.Equal(t, 1, Score(&p, "skin on"))

	assert.Equal(t, 0, Score(&p, "chicken"))
	assert.Equal(t, 0, Score(&p, ""))
	assert.Equal(t, 0, Score(&p, "   "))
}

func TestRankOrdersByTierThenName(t *testing.T) {
	products := []models.Product{
		{Name: "Chicken Sausage", Description: "made with pork casing"},
		{Name: "Pork Ribs"},
		{Name: "Pork"},
		{Name: "Buffalo Mince"},
		{Name: "Pork Chops"},
	}

	Rank(products, "pork")

	got := make([]string, len(products))
	for i, p := range products {
		got[i] = p.Name
	}
	assert.Equal(t, []string{
		"Pork",            // exact name
		"Pork Chops",      // name substring, name tiebreak
		"Pork Ribs",       // name substring
		"Chicken Sausage", // description only
		"Buffalo Mince",   // irrelevant
	}, got)
}

func TestRankIsDeterministic(t *testing.T) {
	make2 := func() []models.Product {
		return []models.Product{
			{Name: "Goat Leg"},
			{Name: "Goat Shoulder"},
			{Name: "Goat Ribs"},
		}
	}

	a, b := make2(), make2()
	Rank(a, "goat")
	Rank(b, "goat")
	assert.Equal(t, a, b)
	assert.Equal(t, "Goat Leg", a[0].Name)
}
