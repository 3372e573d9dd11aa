package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	goruntime "runtime"

	"github.com/adder-build/adder/internal/index"
	"github.com/adder-build/adder/internal/paths"
	"github.com/adder-build/adder/internal/recipe"
	"github.com/adder-build/adder/internal/resolve"
	"github.com/adder-build/adder/internal/settings"
)

// Represents the 'adder resolve' command.
type ResolveCmd struct {
	Recipe         string          `arg:"" help:"Path to the recipe file." type:"existingfile"`
	Channel        string          `short:"c" help:"Local channel directory to solve against." placeholder:"DIR"`
	VariantConfig  string          `help:"Variant configuration file." placeholder:"PATH"`
	Output         string          `short:"o" help:"Output folder for caches and results." placeholder:"DIR"`
	TargetPlatform string          `help:"Target platform subdir (e.g., linux-64)." placeholder:"SUBDIR"`
	BuildPlatform  string          `help:"Build platform subdir. Defaults to the target platform." placeholder:"SUBDIR"`
	Feature        map[string]bool `help:"Feature activation overrides (e.g., --feature static=true)." placeholder:"NAME=BOOL"`
	Settings       string          `help:"Override the settings file path." placeholder:"PATH"`
	JSON           bool            `help:"Print the resolved outputs as JSON."`
}

// Executes the resolve command.
//
// Loads the recipe and variant configuration, constructs one template
// output per recipe step in dependency order, expands each into its
// variant copies, and finalizes every copy against the channel's solver.
// Results are printed as JSON records or logged as a summary.
func (c *ResolveCmd) Run(ctx context.Context) error {
	cfgPath := c.Settings
	if cfgPath == "" {
		cfgPath = paths.Settings()
	}
	stored, err := settings.Load(cfgPath)
	if err != nil {
		return err
	}
	c.applyDefaults(stored)

	if c.Channel == "" {
		return fmt.Errorf("no channel directory given (use --channel or the settings file)")
	}

	channel, err := index.OpenChannel(c.Channel)
	if err != nil {
		return err
	}

	rec, err := recipe.Load(c.Recipe)
	if err != nil {
		return err
	}

	variantCfg, err := recipe.LoadVariantConfig(c.VariantConfig)
	if err != nil {
		return err
	}

	cfg := &resolve.Config{
		BuildSubdir:          c.BuildPlatform,
		HostSubdir:           c.TargetPlatform,
		OutputFolder:         c.Output,
		PinRunAsBuild:        variantCfg.PinRunAsBuild,
		Solver:               channel,
		DefaultPythonVersion: stored.PythonVersion,
	}

	outputs, err := c.buildOutputs(rec, cfg)
	if err != nil {
		return err
	}

	var records []resolve.OutputRecord
	for _, out := range outputs {
		resolved, err := c.resolveOutput(ctx, out, variantCfg, outputs)
		if err != nil {
			return err
		}
		records = append(records, resolved...)
	}

	if c.JSON {
		encoded, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	for _, record := range records {
		slog.Info("resolved output",
			"name", record.Name,
			"version", record.Version,
			"variant", record.DifferentiatingVariant,
			"build", len(record.Requirements["build"]),
			"host", len(record.Requirements["host"]),
			"run", len(record.Requirements["run"]),
		)
	}
	return nil
}

// Fills unset flags from stored settings and built-in defaults.
func (c *ResolveCmd) applyDefaults(stored settings.Settings) {
	if c.Channel == "" {
		c.Channel = stored.Channel
	}
	if c.TargetPlatform == "" {
		c.TargetPlatform = stored.TargetPlatform
	}
	if c.TargetPlatform == "" {
		c.TargetPlatform = hostSubdir()
	}
	if c.BuildPlatform == "" {
		c.BuildPlatform = stored.BuildPlatform
	}
	if c.BuildPlatform == "" {
		c.BuildPlatform = c.TargetPlatform
	}
	if c.Output == "" {
		c.Output = stored.OutputFolder
	}
	if c.Output == "" {
		c.Output = paths.DefaultOutput()
	}
}

// Constructs the template outputs of a recipe in dependency order.
//
// Outputs referencing other steps via their source come after the steps
// they reference, and inherit those steps' build and host requirements.
func (c *ResolveCmd) buildOutputs(rec *recipe.Recipe, cfg *resolve.Config) ([]*resolve.Output, error) {
	byName := make(map[string]*resolve.Output, len(rec.Outputs))
	var all []*resolve.Output

	for _, record := range rec.Outputs {
		out, err := resolve.NewOutput(record, cfg, resolve.Options{
			Parent:           rec.Parent,
			SelectedFeatures: c.Feature,
		})
		if err != nil {
			return nil, err
		}
		byName[out.Name] = out
		all = append(all, out)
	}

	ordered, err := orderBySteps(all)
	if err != nil {
		return nil, err
	}

	for _, out := range ordered {
		if err := out.InheritRequirements(byName); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Expands one template output into its variants and finalizes each.
func (c *ResolveCmd) resolveOutput(ctx context.Context, out *resolve.Output, variantCfg *recipe.VariantConfig, outputs []*resolve.Output) ([]resolve.OutputRecord, error) {
	byName := make(map[string]*resolve.Output, len(outputs))
	for _, o := range outputs {
		byName[o.Name] = o
	}

	variants, diffKeys := resolve.ExpandVariants(variantCfg.Matrix, out.VariantKeys())

	var records []resolve.OutputRecord
	for _, variant := range variants {
		if variant["target_platform"] == "" {
			variant["target_platform"] = c.TargetPlatform
		}

		specialized, err := out.ApplyVariant(variant, diffKeys)
		if err != nil {
			return nil, err
		}

		skipped, err := specialized.Skip()
		if err != nil {
			return nil, err
		}
		if skipped {
			continue
		}

		if err := specialized.FinalizeSolve(ctx, byName); err != nil {
			return nil, err
		}
		records = append(records, specialized.Record())
	}
	return records, nil
}

// Orders outputs so every required step precedes its dependents.
func orderBySteps(outputs []*resolve.Output) ([]*resolve.Output, error) {
	placed := make(map[string]bool, len(outputs))
	remaining := append([]*resolve.Output(nil), outputs...)
	var ordered []*resolve.Output

	for len(remaining) > 0 {
		progress := false

		var deferred []*resolve.Output
		for _, out := range remaining {
			ready := true
			for _, step := range out.RequiredSteps {
				if !placed[step] {
					ready = false
					break
				}
			}
			if !ready {
				deferred = append(deferred, out)
				continue
			}
			ordered = append(ordered, out)
			placed[out.Name] = true
			progress = true
		}

		if !progress {
			return nil, fmt.Errorf("step dependency cycle among outputs")
		}
		remaining = deferred
	}
	return ordered, nil
}

// Returns the platform subdirectory of the machine the tool runs on.
func hostSubdir() string {
	switch goruntime.GOOS {
	case "darwin":
		if goruntime.GOARCH == "arm64" {
			return "osx-arm64"
		}
		return "osx-64"
	case "windows":
		return "win-64"
	default:
		switch goruntime.GOARCH {
		case "arm64":
			return "linux-aarch64"
		case "ppc64le":
			return "linux-ppc64le"
		default:
			return "linux-64"
		}
	}
}
