package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_HasAllBrands(t *testing.T) {
	c := Default()

	brands := c.Brands()
	if len(brands) != 20 {
		t.Fatalf("len(Brands()) = %d, want 20", len(brands))
	}
	if brands[0].Key != "skoda" || brands[0].Label != "Škoda" {
		t.Errorf("first brand = %+v, want skoda/Škoda", brands[0])
	}
	for _, b := range brands {
		if n := len(b.Models); n < 5 || n > 7 {
			t.Errorf("brand %s has %d models, want 5-7", b.Key, n)
		}
	}
}

func TestHasModel(t *testing.T) {
	c := Default()

	tests := []struct {
		brand, model string
		want         bool
	}{
		{"bmw", "X5", true},
		{"porsche", "911", true},
		{"peugeot", "2008", true},
		{"lamborghini", "Huracán", true},
		{"skoda", "911", false},
		{"bmw", "x5", false},
		{"BMW", "X5", false},
		{"trabant", "601", false},
	}
	for _, tt := range tests {
		if got := c.HasModel(tt.brand, tt.model); got != tt.want {
			t.Errorf("HasModel(%q, %q) = %v, want %v", tt.brand, tt.model, got, tt.want)
		}
	}
}

func TestModels_UnknownBrandIsEmpty(t *testing.T) {
	got := Default().Models("trabant")
	if got == nil || len(got) != 0 {
		t.Errorf("Models(unknown) = %#v, want empty slice", got)
	}
}

func TestModels_ReturnsCopy(t *testing.T) {
	c := Default()
	models := c.Models("skoda")
	models[0] = "Felicia"
	if !c.HasModel("skoda", "Octavia") {
		t.Error("mutating the returned slice changed the catalog")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.yaml")
	data := "brands:\n  - key: dacia\n    label: Dacia\n    models: [Duster, Sandero]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !c.HasModel("dacia", "Duster") {
		t.Error("expected dacia/Duster")
	}
	if c.HasBrand("skoda") {
		t.Error("replacement catalog should not contain skoda")
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !c.HasBrand("skoda") {
		t.Error("expected default catalog")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"空":       "brands: []\n",
		"キーなし":    "brands:\n  - label: X\n    models: [A]\n",
		"重複":      "brands:\n  - key: a\n    models: [A]\n  - key: a\n    models: [B]\n",
		"モデルなし":   "brands:\n  - key: a\n    models: []\n",
		"未知のフィールド": "brands:\n  - key: a\n    models: [A]\n    colour: red\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
