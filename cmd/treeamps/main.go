package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plan-systems/klog"

	"github.com/treeamps/amps.SDK/goamps"
	"github.com/treeamps/amps.SDK/libamps"
	"github.com/treeamps/amps.SDK/libamps/catalog"
)

var (
	nLegs       = flag.Int("n", 3, "number of external legs")
	deg         = flag.Int("deg", 0, "total number of factors (degree); leave 0 to infer from n and ee")
	ee          = flag.Int("ee", 0, "number of EE contractions; leave 0 to infer from n and deg")
	all         = flag.Bool("all", false, "drop the one-polarization-per-leg constraint")
	keepPiDotEi = flag.Bool("keep-pidotei", false, "allow p_i·e_i factors (no transversality)")
	dbPathName  = flag.String("db", "", "also add generated structures to the catalog db at this path")
	parseExpr   = flag.String("parse", "", "parse a structure expression and print its canonical form")
	runChecks   = flag.Bool("check", false, "run the built-in reference checks and exit")
)

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()
	defer klog.Flush()

	if *parseExpr != "" {
		ts, err := libamps.ParseStructure(*parseExpr)
		if err != nil {
			klog.Fatalf("parse failed: %v", err)
		}
		fmt.Println(ts.String())
		return
	}

	if *runChecks {
		results, err := libamps.KnownChecks()
		if err != nil {
			klog.Fatalf("check failed: %v", err)
		}
		failed := 0
		for _, res := range results {
			status := "OK"
			if !res.Matches {
				status = "MISMATCH"
				failed++
			}
			fmt.Printf("n=%d deg=%d ee=%d one_pol_per_leg=%v: count=%d expected=%d  (%s)\n",
				res.NLegs, res.Degree, res.EECount, res.OnePerLeg, res.Actual, res.Expected, status)
		}
		if failed > 0 {
			klog.Flush()
			os.Exit(1)
		}
		return
	}

	runGen()
}

func runGen() {
	if *nLegs < 1 {
		klog.Fatalf("-n must be >= 1")
	}

	cfg := goamps.DefaultGenConfig()
	cfg.NLegs = goamps.LegIndex(*nLegs)
	if *all {
		cfg.PolPattern = goamps.Unconstrained
	}
	if *keepPiDotEi {
		cfg.Transversality = goamps.TransversalityAllow
	}

	targetDeg, eeCount := *deg, *ee

	// For gluon bases with one polarization per leg, 2*EE + PE = n and
	// deg = EE + PE imply deg + ee = n, so either target may be inferred
	// from the other.
	if cfg.PolPattern == goamps.OnePerLeg {
		impliedDeg := *nLegs - eeCount
		impliedEE := *nLegs - targetDeg

		switch {
		case targetDeg != 0 && eeCount != 0:
			if targetDeg != impliedDeg || eeCount != impliedEE {
				klog.Fatalf("inconsistent inputs for one-pol-per-leg: n=%d, deg=%d, ee=%d; expected deg = n-ee = %d and ee = n-deg = %d",
					*nLegs, targetDeg, eeCount, impliedDeg, impliedEE)
			}
		case targetDeg == 0 && eeCount != 0:
			targetDeg = impliedDeg
		case eeCount == 0 && targetDeg != 0:
			eeCount = impliedEE
		default:
			// Pure PE basis with no EE contractions
			targetDeg = *nLegs
			eeCount = 0
		}
	}

	tsList, err := libamps.Generate(cfg, targetDeg, eeCount)
	if err != nil {
		klog.Fatalf("generate failed: %v", err)
	}

	fmt.Printf("Tensor structures (n=%d, deg=%d, ee=%d, elim=p%d, one_pol_per_leg=%v) count=%d\n",
		*nLegs, targetDeg, eeCount, *nLegs, cfg.PolPattern == goamps.OnePerLeg, len(tsList))

	goamps.StreamStructures(tsList).
		Print(os.Stdout, goamps.DefaultPrintOpts).
		PullAll()

	// Canonical sanity checks for the 4-leg case
	if *nLegs == 4 && cfg.PolPattern == goamps.OnePerLeg && cfg.Transversality == goamps.ForbidPiDotEi {
		if targetDeg == 3 && eeCount == 1 {
			printSanity("mixed (EE)(PE)(PE) basis", 24, len(tsList))
		}
		if targetDeg == 2 && eeCount == 2 {
			printSanity("pure EE basis", 3, len(tsList))
		}
	}

	if *dbPathName != "" {
		addToCatalog(cfg, targetDeg, eeCount, tsList)
	}
}

func printSanity(label string, expected, actual int) {
	status := "OK"
	if expected != actual {
		status = "MISMATCH"
	}
	fmt.Printf("\n[sanity: %s] expected count=%d  (%s)\n", label, expected, status)
}

func addToCatalog(cfg goamps.GenConfig, targetDeg, eeCount int, tsList []*goamps.TensorStructure) {
	cat, err := catalog.OpenCatalog(goamps.CatalogOpts{
		DbPathName: *dbPathName,
	})
	if err != nil {
		klog.Fatalf("open catalog failed: %v", err)
	}

	basis := goamps.Basis{
		Config:  cfg,
		Degree:  targetDeg,
		EECount: eeCount,
	}

	added := 0
	for _, ts := range tsList {
		if cat.TryAdd(basis, ts) {
			added++
		}
	}
	klog.Infof("catalog %q: added %d, basis now holds %d", *dbPathName, added, cat.NumStructures(basis))

	if err := cat.Close(); err != nil {
		klog.Fatalf("close catalog failed: %v", err)
	}
}
