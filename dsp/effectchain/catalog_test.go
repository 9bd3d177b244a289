package effectchain

import (
	"testing"

	"github.com/stemstation/audiocore/dsp/param"
)

func TestCatalogRegisterOverwriteKeepsOrder(t *testing.T) {
	c := NewCatalog()

	c.Register(&Definition{ID: "a", Name: "First"})
	c.Register(&Definition{ID: "b", Name: "Second"})
	c.Register(&Definition{ID: "a", Name: "Replaced"})

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("got %d definitions, want 2", len(all))
	}

	if all[0].ID != "a" || all[0].Name != "Replaced" {
		t.Fatalf("overwrite lost position or content: %+v", all[0])
	}

	if all[1].ID != "b" {
		t.Fatalf("second definition moved: %+v", all[1])
	}
}

func TestCatalogGetUnknown(t *testing.T) {
	c := NewCatalog()

	if c.Get("missing") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestCatalogByCategory(t *testing.T) {
	c := NewCatalog()
	RegisterBuiltins(c)

	dynamics := c.ByCategory(CategoryDynamics)
	if len(dynamics) != 1 || dynamics[0].ID != "compressor" {
		t.Fatalf("dynamics category = %+v", dynamics)
	}

	modulation := c.ByCategory(CategoryModulation)
	if len(modulation) != 2 {
		t.Fatalf("got %d modulation effects, want 2", len(modulation))
	}
}

func TestDefinitionValueFallsBack(t *testing.T) {
	def := &Definition{
		Parameters: []*param.Parameter{param.New("gain", "Gain", 3, -12, 12)},
	}

	if v := def.Value("gain", 0); v != 3 {
		t.Fatalf("got %v, want 3", v)
	}

	if v := def.Value("missing", 7); v != 7 {
		t.Fatalf("got %v, want default 7", v)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("x", NewEqualizerProcessor); err != nil {
		t.Fatal(err)
	}

	if err := r.Register("x", NewEqualizerProcessor); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
