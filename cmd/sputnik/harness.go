package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sputniklab/sputnik/internal/assembler"
	"github.com/sputniklab/sputnik/internal/clangtool"
	"github.com/sputniklab/sputnik/internal/config"
	"github.com/sputniklab/sputnik/internal/harness"
	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/testspec"
	"github.com/sputniklab/sputnik/internal/tmpdir"
)

var harnessCommand = &cli.Command{
	Name:      "harness",
	Usage:     "synthesize and assemble a differential-testing harness from a KDL test descriptor",
	ArgsUsage: "<testspec.kdl>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Value: config.ProjectFileName, Usage: "project file"},
		&cli.StringFlag{Name: "engine", Usage: "override every testcase's engine (symex|fuzzing)"},
		&cli.StringFlag{Name: "out", Value: "target", Usage: "output directory for target artifacts"},
		&cli.BoolFlag{Name: "keep-harness", Usage: "keep the synthesized harness.c alongside the target"},
		&cli.BoolFlag{Name: "array-sweep", Usage: "sweep array_width across the configured range instead of a single width"},
	},
	Action: func(c *cli.Context) error {
		specPath := c.Args().First()
		if specPath == "" {
			return fmt.Errorf("harness: a testspec.kdl path is required")
		}

		proj, err := config.LoadProject(c.String("config"))
		if err != nil {
			return err
		}
		harnessCfg, err := config.LoadHarnessConfig(proj.HarnessConfig)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(specPath)
		if err != nil {
			return err
		}
		cases, err := testspec.ParseFile(string(content))
		if err != nil {
			return err
		}

		libPaths := harnessCfg.Libs
		if len(libPaths) == 0 {
			libPaths = proj.Libraries
		}

		libs := make([]*library.Library, 0, len(libPaths))
		for _, p := range libPaths {
			lib, err := library.Load(p)
			if err != nil {
				return err
			}
			if err := lib.State.Reload(); err != nil {
				return err
			}
			libs = append(libs, lib)
		}

		drv := clangtool.New()
		ctx := context.Background()

		widths := []int{0} // 0 means "use the testcase's own ArrayWidth"
		if c.Bool("array-sweep") {
			widths = assembler.ArrayWidths(harnessCfg.GeneralMaxArrayWidth)
			if len(widths) == 0 {
				return fmt.Errorf("harness: --array-sweep requires general_max_array_width >= 2")
			}
		}

		for _, tc := range cases {
			if engine := c.String("engine"); engine != "" {
				tc.Engine = harness.Engine(engine)
			}

			for _, width := range widths {
				if width != 0 {
					tc.ArrayWidth = width
				}
				if err := buildOneTarget(ctx, drv, harnessCfg, libs, tc, c.String("out"), c.Bool("keep-harness")); err != nil {
					return fmt.Errorf("harness %s: %w", tc.Function, err)
				}
			}
		}

		return nil
	},
}

// buildOneTarget synthesizes, writes, and assembles a single harness
// translation unit for one TestCase at its currently-set ArrayWidth
// (spec.md §4.G/§4.H).
func buildOneTarget(ctx context.Context, drv *clangtool.Driver, harnessCfg config.HarnessConfig, libs []*library.Library, tc harness.TestCase, outDir string, keepHarness bool) error {
	defaultArraySize := tc.ArrayWidth
	if defaultArraySize == 0 {
		defaultArraySize = harnessCfg.GeneralMaxArrayWidth
	}
	if defaultArraySize == 0 {
		defaultArraySize = harness.DefaultArrayWidth
	}

	sig, err := harness.ResolveSignature(ctx, tc, defaultArraySize)
	if err != nil {
		return err
	}

	scope, err := tmpdir.New("", "harness-"+tc.Function)
	if err != nil {
		return err
	}
	defer scope.Close()
	scratch := scope.Path

	wrapperForLib := matchSemanticWrappers(tc.SemanticWrappers, libs)

	semanticWrapperSet := make(map[string]bool, len(wrapperForLib))
	for name := range wrapperForLib {
		semanticWrapperSet[name] = true
	}

	entries, err := harness.ResolveEntries(tc, sig, libs, semanticWrapperSet)
	if err != nil {
		return err
	}

	libBlobs := make([]string, 0, len(libs))
	entryByLib := make(map[string]harness.LibEntry, len(entries))
	for i, lib := range libs {
		entryByLib[lib.Name] = entries[i]
		libBlobs = append(libBlobs, lib.TargetBlob)

		wrapperSrc, ok := wrapperForLib[lib.Name]
		if !ok {
			continue
		}
		retType := sig.Fork(lib.Name + "_" + tc.Function).Ret
		entry, wrapperBlob, err := assembler.PrepareSemanticWrapper(ctx, drv, lib, tc.Function, retType, wrapperSrc, scratch)
		if err != nil {
			return err
		}
		entryByLib[lib.Name] = entry
		libBlobs = append(libBlobs, wrapperBlob)
	}

	orderedEntries := make([]harness.LibEntry, len(libs))
	for i, lib := range libs {
		orderedEntries[i] = entryByLib[lib.Name]
	}

	verifier := harness.VerifierKind(harnessCfg.Verifier)
	if verifier == "" {
		verifier = harness.VerifierNew
	}

	synth := harness.New(tc, sig, orderedEntries, verifier)
	source, err := synth.Render()
	if err != nil {
		return err
	}

	targetFolder := filepath.Join(outDir, tc.Function)
	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		return err
	}

	harnessSrc := filepath.Join(scratch, tc.Function+".c")
	if keepHarness {
		harnessSrc = filepath.Join(targetFolder, tc.Function+".c")
	}
	if err := os.WriteFile(harnessSrc, []byte(source), 0o644); err != nil {
		return err
	}

	switch tc.Engine {
	case harness.EngineFuzzing:
		target, err := assembler.BuildFuzzingTarget(ctx, drv, harnessSrc, libBlobs, targetFolder, tc.Function, synth.SeedList())
		if err != nil {
			return err
		}
		fmt.Printf("%s: wrote %s (run %s)\n", tc.Function, target.Executable, target.RunScript)
	default:
		target, err := assembler.BuildSymexTarget(ctx, drv, harnessSrc, libBlobs, harnessCfg.Symex.KleeHeaders, targetFolder, tc.Function)
		if err != nil {
			return err
		}
		fmt.Printf("%s: wrote %s\n", tc.Function, target)
	}

	return nil
}

// matchSemanticWrappers assigns each semantic-wrapper source path to
// the library its base filename names (e.g. "musl_strcpy_oracle.c"
// matches the library named "musl"). With exactly one configured
// library and exactly one wrapper path, the match is unambiguous and
// applied regardless of filename (spec.md §6 treats semantic wrappers
// as opaque input; this naming convention is sputnik's own choice,
// recorded in DESIGN.md, for resolving which library a wrapper
// belongs to).
func matchSemanticWrappers(paths []string, libs []*library.Library) map[string]string {
	result := make(map[string]string, len(paths))

	if len(paths) == 1 && len(libs) == 1 {
		result[libs[0].Name] = paths[0]
		return result
	}

	for _, p := range paths {
		base := filepath.Base(p)
		for _, lib := range libs {
			if strings.HasPrefix(base, lib.Name+"_") {
				result[lib.Name] = p
				break
			}
		}
	}

	return result
}
