package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 4)

	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
		assert.Equal(t, c.ID, c.Kind.String())
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.BestFor)
	}
	assert.Equal(t, []string{"efficient-grid", "linear-flow", "circular-flow", "separated-zones"}, ids)
}

func TestLoadCategoriesRejectsUnknownID(t *testing.T) {
	_, err := LoadCategories([]byte("categories:\n  - id: helipad\n    name: Helipad\n"))
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = LoadCategories([]byte("categories: ["))
	assert.Error(t, err)
}

func TestCatalogGenerateAll(t *testing.T) {
	c := NewCatalog(newTestGenerator(), DefaultCategories(), nil)

	layouts, err := c.GenerateAll(Request{CarSlots: 12, BikeSlots: 4, PricePerHour: 25})
	require.NoError(t, err)
	require.Len(t, layouts, 4)
	for i, l := range layouts {
		assert.Equal(t, c.Categories()[i].ID, l.TemplateID)
		assert.NoError(t, l.CheckBijection())
	}
}

func TestCatalogSkipsFailingGenerator(t *testing.T) {
	gen := newTestGenerator()
	c := NewCatalog(gen, DefaultCategories(), nil)
	c.generate = func(kind Kind, req Request) (*domain.Layout, error) {
		if kind == CircularFlow {
			return nil, errors.New("geometry exploded")
		}
		return gen.Generate(kind, req)
	}

	layouts, err := c.GenerateAll(Request{CarSlots: 5, BikeSlots: 5})
	require.NoError(t, err)
	require.Len(t, layouts, 3)
	for _, l := range layouts {
		assert.NotEqual(t, CircularFlow.String(), l.TemplateID)
	}
}

func TestCatalogRejectsZeroRequest(t *testing.T) {
	c := NewCatalog(newTestGenerator(), DefaultCategories(), nil)
	layouts, err := c.GenerateAll(Request{})
	assert.Nil(t, layouts)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.True(t, strings.Contains(err.Error(), "at least one"))
}
