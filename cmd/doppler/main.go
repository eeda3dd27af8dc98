// Command doppler reduces a gated-camera spectroscopy shot to per-chord
// ion temperatures: load an SPE file, bin the frame into spatial chords,
// find emission-line windows, fit each chord's line shape, and print the
// Doppler temperature table. Results can optionally be persisted to
// SQLite and rendered as HTML/PNG reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/zap-plasma/doppler.report/internal/config"
	"github.com/zap-plasma/doppler.report/internal/report"
	"github.com/zap-plasma/doppler.report/internal/specdb"
	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
	"github.com/zap-plasma/doppler.report/internal/spefile"
	"github.com/zap-plasma/doppler.report/internal/version"
)

var (
	spePath    = flag.String("spe", "", "Path to the SPE shot file (required)")
	configPath = flag.String("config", "", "Path to the analysis config JSON")
	dbPath     = flag.String("db", "", "SQLite results database (overrides config; empty disables)")
	reportDir  = flag.String("report", "", "Directory for the HTML shot report (overrides config; empty disables)")
	chordPNG   = flag.String("chord-png", "", "Write a PNG plot of one chord to this path")
	chordIdx   = flag.Int("chord", 0, "Chord index for -chord-png")
	lineIdx    = flag.Int("line", 0, "Line index for -chord-png")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version.String())
		return
	}
	if *spePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := &config.AnalysisConfig{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if len(cfg.BinEdges) == 0 {
		log.Fatalf("No bin_edges configured; set bin_edges in the config file")
	}

	s, err := spefile.ReadFile(*spePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *spePath, err)
	}
	log.Printf("Loaded %s: %dx%d frame, gain=%d gate=%gs delay=%gs",
		filepath.Base(*spePath), s.Rows(), s.Cols(), s.Meta.Gain, s.Meta.GateWidth, s.Meta.GateDelay)

	res, err := cfg.Analyzer().Reduce(s, cfg.BinEdges, nil)
	if err != nil {
		log.Fatalf("Reduction failed: %v", err)
	}
	if len(res.ROIs) == 0 {
		log.Printf("No emission lines found above prominence %g", cfg.GetProminence())
	}

	printResults(res)

	shotID := ""
	if path := firstNonEmpty(*dbPath, cfg.GetDatabasePath()); path != "" {
		db, err := specdb.New(path)
		if err != nil {
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer db.Close()

		shotID, err = db.RecordShot(filepath.Base(*spePath), s.Meta)
		if err != nil {
			log.Fatalf("Failed to record shot: %v", err)
		}
		if err := db.RecordChordResults(shotID, res.Results); err != nil {
			log.Fatalf("Failed to record chord results: %v", err)
		}
		log.Printf("Recorded shot %s (%d chord results) in %s", shotID, len(res.Results), path)
	}

	if dir := firstNonEmpty(*reportDir, cfg.GetReportDir()); dir != "" {
		if shotID == "" {
			shotID = filepath.Base(*spePath)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create report directory: %v", err)
		}
		path := filepath.Join(dir, shotID+".html")
		if err := report.WriteShotReport(path, shotID, s, res); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Wrote report %s", path)
	}

	if *chordPNG != "" {
		if err := report.SaveChordPNG(*chordPNG, s, res, *chordIdx, *lineIdx); err != nil {
			log.Fatalf("Failed to write chord plot: %v", err)
		}
		log.Printf("Wrote chord plot %s", *chordPNG)
	}
}

// printResults writes the per-chord temperature table to stdout.
func printResults(res *spectroscopy.ShotResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHORD\tROW\tLINE\tROI\tCENTER (nm)\tWIDTH (nm)\tT (eV)\tFIT")
	for _, r := range res.Results {
		status := "ok"
		if !r.Temp.Fit.Converged {
			status = "failed"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t[%d, %d)\t%.4f\t%.4f\t%.2f\t%s\n",
			r.Chord, r.BinCenter, r.Line, r.ROI.Lo, r.ROI.Hi,
			r.Temp.Fit.Center, r.Temp.Fit.Width, r.Temp.TempEV, status)
	}
	w.Flush()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
