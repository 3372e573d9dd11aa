package recipe

import (
	"reflect"
	"testing"
)

const singleRecipe = `
step:
  name: zlib
package:
  version: "1.2.13"
build:
  number: 3
source:
  url: https://example.invalid/zlib-1.2.13.tar.gz
  sha256: abc123
requirements:
  build:
    - COMPILER_C c
  host:
    - libpng
`

const multiRecipe = `
step:
  name: libfoo-split
package:
  version: "2.1.0"
source:
  - url: https://example.invalid/libfoo-2.1.0.tar.gz
outputs:
  - step:
      name: libfoo
    requirements:
      run:
        - zlib
  - step:
      name: libfoo-dev
    source:
      step: libfoo
    features:
      - name: static
        default: false
`

func TestDecodeSingleRecord(t *testing.T) {
	recipe, err := Decode([]byte(singleRecipe))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if recipe.Parent != nil {
		t.Fatalf("single-record recipe has a parent")
	}
	if len(recipe.Outputs) != 1 {
		t.Fatalf("len(Outputs) = %d, want 1", len(recipe.Outputs))
	}

	rec := recipe.Outputs[0]
	if rec.Step.Name != "zlib" {
		t.Fatalf("step name = %q", rec.Step.Name)
	}
	if rec.Package["version"] != "1.2.13" {
		t.Fatalf("version = %v", rec.Package["version"])
	}
	if len(rec.Source) != 1 || rec.Source[0].URL == "" || rec.Source[0].SHA256 != "abc123" {
		t.Fatalf("source = %+v", rec.Source)
	}
	if !reflect.DeepEqual(rec.Requirements["build"], []string{"COMPILER_C c"}) {
		t.Fatalf("build requirements = %v", rec.Requirements["build"])
	}
}

func TestDecodeOutputsList(t *testing.T) {
	recipe, err := Decode([]byte(multiRecipe))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if recipe.Parent == nil || recipe.Parent.Step.Name != "libfoo-split" {
		t.Fatalf("parent = %+v", recipe.Parent)
	}
	if len(recipe.Parent.Source) != 1 {
		t.Fatalf("parent source = %+v", recipe.Parent.Source)
	}

	if len(recipe.Outputs) != 2 {
		t.Fatalf("len(Outputs) = %d, want 2", len(recipe.Outputs))
	}
	dev := recipe.Outputs[1]
	if dev.Source[0].Step != "libfoo" {
		t.Fatalf("dev source = %+v", dev.Source)
	}
	if len(dev.Features) != 1 || dev.Features[0].Name != "static" || dev.Features[0].Default {
		t.Fatalf("dev features = %+v", dev.Features)
	}
}

func TestDecodeRejectsNamelessRecords(t *testing.T) {
	if _, err := Decode([]byte("package:\n  version: \"1.0\"\n")); err == nil {
		t.Fatalf("nameless single record accepted")
	}
	if _, err := Decode([]byte("outputs:\n  - package:\n      version: \"1.0\"\n")); err == nil {
		t.Fatalf("nameless output accepted")
	}
}

func TestSourceListScalarAndSequence(t *testing.T) {
	recipe, err := Decode([]byte("step:\n  name: a\nsource:\n  - url: one\n  - path: two\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := recipe.Outputs[0].Source; len(got) != 2 || got[0].URL != "one" || got[1].Path != "two" {
		t.Fatalf("sequence source = %+v", got)
	}

	recipe, err = Decode([]byte("step:\n  name: a\nsource:\n  url: one\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := recipe.Outputs[0].Source; len(got) != 1 || got[0].URL != "one" {
		t.Fatalf("mapping source = %+v", got)
	}
}

func TestRecordClone(t *testing.T) {
	recipe, err := Decode([]byte(singleRecipe))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rec := recipe.Outputs[0]
	rec.Build["run_exports"] = []any{"zlib"}

	clone := rec.Clone()
	if !reflect.DeepEqual(clone, rec) {
		t.Fatalf("clone differs from original")
	}

	clone.Build["number"] = 9
	clone.Build["run_exports"].([]any)[0] = "libpng"
	clone.Requirements["host"][0] = "changed"

	if rec.Build["number"] != 3 {
		t.Fatalf("section mutation leaked: %v", rec.Build["number"])
	}
	if rec.Build["run_exports"].([]any)[0] != "zlib" {
		t.Fatalf("nested mutation leaked: %v", rec.Build["run_exports"])
	}
	if rec.Requirements["host"][0] != "libpng" {
		t.Fatalf("requirement mutation leaked: %v", rec.Requirements["host"])
	}
}
