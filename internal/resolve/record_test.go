package resolve

import (
	"reflect"
	"testing"

	"github.com/adder-build/adder/internal/recipe"
)

func TestOutputRecord(t *testing.T) {
	plain := mustParse(t, "zlib >=1.2")
	if err := plain.Bind(Resolution{Version: "1.2.13", BuildString: "h1"}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	exported := mustParse(t, "libfoo >=2.1")
	exported.FromRunExport = true

	out := &Output{
		Name:        "app",
		Version:     "0.4.0",
		BuildNumber: 2,
		Sources: []recipe.Source{
			{URL: "https://example.invalid/app-0.4.0.tar.gz", Folder: "src"},
			{Step: "libfoo"},
		},
		Variant:                map[string]string{"python": "3.10.12"},
		DifferentiatingVariant: []string{"3.10"},
		Requirements: map[string][]*Spec{
			EnvHost: {plain},
			EnvRun:  {exported},
		},
	}

	rec := out.Record()
	if rec.Name != "app" || rec.Version != "0.4.0" || rec.BuildNumber != 2 {
		t.Fatalf("identity = %q %q %d", rec.Name, rec.Version, rec.BuildNumber)
	}
	if len(rec.Source) != 2 || rec.Source[0]["url"] == "" || rec.Source[1]["step"] != "libfoo" {
		t.Fatalf("source = %v", rec.Source)
	}

	host := rec.Requirements["host"]
	if len(host) != 1 || host[0].Spec != "zlib >=1.2" || host[0].Name != "zlib" {
		t.Fatalf("host records = %+v", host)
	}
	if !reflect.DeepEqual(host[0].Resolved.FinalVersion, []string{"1.2.13", "h1"}) {
		t.Fatalf("host resolved = %v", host[0].Resolved.FinalVersion)
	}

	run := rec.Requirements["run"]
	if !reflect.DeepEqual(run[0].Attrs, []string{"from_run_export"}) {
		t.Fatalf("run attrs = %v", run[0].Attrs)
	}
	if run[0].Resolved.FinalVersion != nil {
		t.Fatalf("unsolved spec carries a resolution: %v", run[0].Resolved.FinalVersion)
	}

	if rec.Requirements["build"] == nil {
		t.Fatalf("empty build environment should still serialize as a list")
	}
}
