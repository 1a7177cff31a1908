package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"
)

func TestProjectGroupsByCategory(t *testing.T) {
	records := []types.WidgetRecord{
		{ID: "w1", Name: "weather", Category: "Info", Settings: types.DefaultSettings()},
		{ID: "w2", Name: "Clock", Category: "Info", Settings: types.DefaultSettings()},
		{ID: "w3", Name: "Notes", Category: "", Settings: types.DefaultSettings()},
	}
	modules := []types.Module{
		{ID: "m1", Name: "Lofi", Type: types.ModuleTypeYouTubeEmbed, Category: "media", VideoID: "jfKfPfyJRdk"},
	}

	p := Project(records, modules)

	require.Len(t, p.Categories, 3)
	assert.Equal(t, "Info", p.Categories[0].Category)
	assert.Equal(t, "media", p.Categories[1].Category)
	assert.Equal(t, types.DefaultCategory, p.Categories[2].Category)

	info := p.Categories[0].Modules
	require.Len(t, info, 2)
	assert.Equal(t, "Clock", info[0].Name)
	assert.Equal(t, "weather", info[1].Name)
	assert.Equal(t, types.ModuleTypeWidget, info[0].Type)

	assert.Equal(t, types.ModuleTypeYouTubeEmbed, p.Categories[1].Modules[0].Type)
}

func TestProjectWidgetViewKeepsRecordOrder(t *testing.T) {
	settings := types.DefaultSettings()
	settings.Autoload = true
	records := []types.WidgetRecord{
		{ID: "w2", Name: "Zed", Settings: settings},
		{ID: "w1", Name: "Alpha", Settings: types.DefaultSettings()},
	}

	p := Project(records, nil)

	require.Len(t, p.Widgets, 2)
	assert.Equal(t, "w2", p.Widgets[0].ID)
	assert.True(t, p.Widgets[0].Autoload)
	assert.Equal(t, "w1", p.Widgets[1].ID)
	assert.False(t, p.Widgets[1].Autoload)
	assert.Equal(t, types.Position{X: types.DefaultX, Y: types.DefaultY}, p.Widgets[1].Position)
}

func TestProjectEmpty(t *testing.T) {
	p := Project(nil, nil)
	assert.NotNil(t, p.Categories)
	assert.NotNil(t, p.Widgets)
	assert.Empty(t, p.Categories)
	assert.Empty(t, p.Widgets)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	got := Normalize(types.WidgetRecord{Name: "  Clock ", Path: `.\clock\index.html`})

	assert.Equal(t, "Clock", got.Name)
	assert.Equal(t, "widgets/clock/index.html", got.Path)
	assert.Equal(t, types.DefaultCategory, got.Category)
	assert.Equal(t, types.DefaultIcon, got.Icon)
	assert.Equal(t, types.DefaultDescription, got.Description)
	assert.Equal(t, types.DefaultVersion, got.Version)
	assert.Equal(t, types.DefaultSettings(), got.Settings)

	assert.Equal(t, got, Normalize(got))
}

func TestNormalizeMergesSettingsPerField(t *testing.T) {
	tests := []struct {
		name string
		in   types.WidgetSettings
		want types.WidgetSettings
	}{
		{
			name: "autoload only",
			in:   types.WidgetSettings{Autoload: true},
			want: types.WidgetSettings{
				Position: types.Position{X: types.DefaultX, Y: types.DefaultY},
				Size:     types.Size{Width: types.DefaultWidth, Height: types.DefaultHeight},
				Autoload: true,
			},
		},
		{
			name: "width only",
			in:   types.WidgetSettings{Size: types.Size{Width: 400}},
			want: types.WidgetSettings{
				Position: types.Position{X: types.DefaultX, Y: types.DefaultY},
				Size:     types.Size{Width: 400, Height: types.DefaultHeight},
			},
		},
		{
			name: "position only",
			in:   types.WidgetSettings{Position: types.Position{X: 0, Y: 300}},
			want: types.WidgetSettings{
				Position: types.Position{X: 0, Y: 300},
				Size:     types.Size{Width: types.DefaultWidth, Height: types.DefaultHeight},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(types.WidgetRecord{Name: "Clock", Settings: tt.in})
			assert.Equal(t, tt.want, got.Settings)
			assert.Equal(t, got, Normalize(got))
		})
	}
}
