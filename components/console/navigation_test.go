package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationListsScreensInOrder(t *testing.T) {
	svc := newTestService(t, Options{})
	items := svc.Navigation(context.Background(), ViewerContext{})

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"dashboard", "users", "products", "categories", "bookings", "settings"}, ids)
	assert.Equal(t, "/bookings", items[4].Route)
	assert.Equal(t, 10, items[0].Position)
	assert.Equal(t, 60, items[5].Position)

	settings := items[5]
	require.Len(t, settings.Children, 4)
	assert.Equal(t, "/settings/privacy", settings.Children[3].Route)
	assert.Equal(t, 40, settings.Children[3].Position)
}

func TestNavigationTranslatesLabels(t *testing.T) {
	svc := newTestService(t, Options{Translator: MapTranslator{
		"es": {
			"console.menu.products":         "Productos",
			"console.menu.settings.profile": "Perfil",
		},
	}})
	items := svc.Navigation(context.Background(), ViewerContext{Locale: "es"})

	assert.Equal(t, "Dashboard", items[0].Label)
	assert.Equal(t, "Productos", items[2].Label)
	assert.Equal(t, "Perfil", items[5].Children[0].Label)
	assert.Equal(t, "Password", items[5].Children[1].Label)

	again := svc.Navigation(context.Background(), ViewerContext{})
	assert.Equal(t, "Profile", again[5].Children[0].Label)
}

func TestScreenTitle(t *testing.T) {
	svc := newTestService(t, Options{})
	title, err := svc.ScreenTitle(context.Background(), ViewerContext{}, ScreenCategories)
	require.NoError(t, err)
	assert.Equal(t, "Categories", title)

	_, err = svc.ScreenTitle(context.Background(), ViewerContext{}, Screen("x"))
	assert.ErrorIs(t, err, ErrUnknownScreen)
}
