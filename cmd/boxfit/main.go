// Command boxfit fits an axis-aligned bounding box to a 3D point cloud
// by importance sampling and prints the best-supported hypotheses.
//
// Observations come either from a CSV file of x,y,z rows (-input) or
// from the synthetic edge-sampling generator (-synthetic). Results go to
// stdout and optionally to a sqlite database, a PNG projection plot, and
// an HTML report.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/boxfit/internal/boxfit"
	"github.com/banshee-data/boxfit/internal/boxfit/report"
	storage "github.com/banshee-data/boxfit/internal/boxfit/storage/sqlite"
)

// syntheticStream is the substream ID reserved for the data generator so
// it never collides with a particle substream.
const syntheticStream = math.MaxUint64

var (
	inputPath  = flag.String("input", "", "CSV file of x,y,z observation rows")
	configPath = flag.String("config", "", "JSON tuning config (see boxfit.TuningConfig)")

	synthetic    = flag.Bool("synthetic", false, "generate a synthetic observation cloud instead of reading -input")
	synthL       = flag.Float64("synth-l", 0.5, "synthetic box length (x extent)")
	synthW       = flag.Float64("synth-w", 0.25, "synthetic box width (y extent)")
	synthH       = flag.Float64("synth-h", 0.1, "synthetic box height (z extent)")
	synthX       = flag.Float64("synth-x", 0.5, "synthetic box center x")
	synthY       = flag.Float64("synth-y", 0.5, "synthetic box center y")
	synthZ       = flag.Float64("synth-z", 0.5, "synthetic box center z")
	synthSigma   = flag.Float64("synth-sigma", 0.02, "synthetic noise scale")
	synthPerEdge = flag.Int("synth-points-per-edge", 20, "synthetic points per box edge")

	boundsFlag    = flag.String("bounds", "", "center prior bounds as xmin,xmax,ymin,ymax,zmin,zmax")
	sigmaMin      = flag.Float64("sigma-min", 0, "sigma prior lower bound (0 keeps config/default)")
	sigmaMax      = flag.Float64("sigma-max", 0, "sigma prior upper bound (0 keeps config/default)")
	zeta          = flag.Float64("zeta", 0, "proposal stddev around the observation centroid (0 keeps config/default)")
	particles     = flag.Int("particles", 0, "number of particles (0 keeps config/default)")
	pointsPerEdge = flag.Int("points-per-edge", 0, "wireframe resolution for ranking (0 keeps config/default)")
	topK          = flag.Int("top", 0, "number of ranked hypotheses to report (0 keeps config/default)")
	seed          = flag.Uint64("seed", 0, "random seed (0 keeps config/default)")
	workers       = flag.Int("workers", 0, "particle workers (0 means one per CPU)")

	dbPath   = flag.String("db", "", "sqlite database to persist the run into")
	plotPath = flag.String("plot", "", "PNG projection plot output path")
	htmlPath = flag.String("html", "", "HTML report output path")
	projFlag = flag.String("proj", "xy", "report projection: xy, xz or yz")
)

func main() {
	flag.Parse()

	settings, err := resolveSettings()
	if err != nil {
		log.Fatalf("[boxfit] %v", err)
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("[boxfit] %v", err)
	}

	obs, source, err := loadObservations(settings)
	if err != nil {
		log.Fatalf("[boxfit] %v", err)
	}
	log.Printf("[boxfit] loaded %d observation points from %s", len(obs), source)

	sampler := boxfit.Sampler{
		Model:    boxfit.Model{Bounds: settings.Bounds},
		Proposal: boxfit.Proposal{Zeta: settings.Zeta},
		Workers:  settings.Workers,
	}

	start := time.Now()
	ps, err := sampler.Infer(obs, settings.Particles, settings.Seed)
	if err != nil {
		log.Fatalf("[boxfit] inference failed: %v", err)
	}
	ranked, err := boxfit.Rank(ps, obs, settings.PointsPerEdge)
	if err != nil {
		log.Fatalf("[boxfit] ranking failed: %v", err)
	}
	top := boxfit.TopK(ranked, settings.TopK)
	log.Printf("[boxfit] particles=%d points_per_edge=%d seed=%d elapsed=%s",
		settings.Particles, settings.PointsPerEdge, settings.Seed, time.Since(start).Round(time.Millisecond))

	printRanked(top, obs)

	proj, err := parseProjection(*projFlag)
	if err != nil {
		log.Fatalf("[boxfit] %v", err)
	}
	if *dbPath != "" {
		if err := persistRun(*dbPath, source, obs, settings, ranked); err != nil {
			log.Fatalf("[boxfit] persist failed: %v", err)
		}
	}
	if *plotPath != "" {
		if err := report.ScatterPNG(*plotPath, obs, top, settings.PointsPerEdge, proj); err != nil {
			log.Fatalf("[boxfit] plot failed: %v", err)
		}
		log.Printf("[boxfit] wrote plot %s", *plotPath)
	}
	if *htmlPath != "" {
		if err := report.ScatterHTML(*htmlPath, obs, top, settings.PointsPerEdge, proj); err != nil {
			log.Fatalf("[boxfit] html report failed: %v", err)
		}
		log.Printf("[boxfit] wrote report %s", *htmlPath)
	}
}

// resolveSettings layers defaults, the optional config file, and any
// explicitly set flags, in that order.
func resolveSettings() (boxfit.Settings, error) {
	settings := boxfit.DefaultSettings()

	if *configPath != "" {
		cfg, err := boxfit.LoadTuningConfig(*configPath)
		if err != nil {
			return settings, err
		}
		cfg.Apply(&settings)
	}

	if *boundsFlag != "" {
		vals, err := parseCSVFloatSlice(*boundsFlag)
		if err != nil {
			return settings, fmt.Errorf("parse -bounds: %w", err)
		}
		if len(vals) != 6 {
			return settings, fmt.Errorf("-bounds needs 6 values, got %d", len(vals))
		}
		settings.Bounds.XMin, settings.Bounds.XMax = vals[0], vals[1]
		settings.Bounds.YMin, settings.Bounds.YMax = vals[2], vals[3]
		settings.Bounds.ZMin, settings.Bounds.ZMax = vals[4], vals[5]
	}
	if *sigmaMin > 0 {
		settings.Bounds.SigmaMin = *sigmaMin
	}
	if *sigmaMax > 0 {
		settings.Bounds.SigmaMax = *sigmaMax
	}
	if *zeta > 0 {
		settings.Zeta = *zeta
	}
	if *particles > 0 {
		settings.Particles = *particles
	}
	if *pointsPerEdge > 0 {
		settings.PointsPerEdge = *pointsPerEdge
	}
	if *topK > 0 {
		settings.TopK = *topK
	}
	if *seed > 0 {
		settings.Seed = *seed
	}
	if *workers > 0 {
		settings.Workers = *workers
	}
	return settings, nil
}

func loadObservations(settings boxfit.Settings) (boxfit.PointCloud, string, error) {
	switch {
	case *inputPath != "" && *synthetic:
		return nil, "", fmt.Errorf("use either -input or -synthetic, not both")
	case *inputPath != "":
		obs, err := readPointsCSV(*inputPath)
		if err != nil {
			return nil, "", err
		}
		return obs, *inputPath, nil
	case *synthetic:
		box := boxfit.BoxParams{
			XC: *synthX, YC: *synthY, ZC: *synthZ,
			L: *synthL, W: *synthW, H: *synthH,
			Sigma: *synthSigma,
		}
		src := rand.NewPCG(settings.Seed, syntheticStream)
		obs, err := boxfit.SampleBoxCloud(box, *synthPerEdge, src)
		if err != nil {
			return nil, "", err
		}
		return obs, fmt.Sprintf("synthetic L=%g W=%g H=%g sigma=%g", box.L, box.W, box.H, box.Sigma), nil
	default:
		return nil, "", fmt.Errorf("either -input or -synthetic is required")
	}
}

// readPointsCSV reads x,y,z rows. A single non-numeric leading row is
// treated as a header and skipped.
func readPointsCSV(path string) (boxfit.PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var cloud boxfit.PointCloud
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line++
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s line %d: need 3 columns, got %d", path, line, len(rec))
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if errX != nil || errY != nil || errZ != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("%s line %d: invalid coordinates %q", path, line, rec)
		}
		cloud = append(cloud, boxfit.Point{X: x, Y: y, Z: z})
	}
	if len(cloud) == 0 {
		return nil, fmt.Errorf("%s: no points", path)
	}
	return cloud, nil
}

// parseCSVFloatSlice parses a comma-separated list of floats.
func parseCSVFloatSlice(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseProjection(s string) (report.Projection, error) {
	switch strings.ToLower(s) {
	case "xy":
		return report.ProjectionXY, nil
	case "xz":
		return report.ProjectionXZ, nil
	case "yz":
		return report.ProjectionYZ, nil
	}
	return 0, fmt.Errorf("unknown projection %q (want xy, xz or yz)", s)
}

func printRanked(top []boxfit.RankedHypothesis, obs boxfit.PointCloud) {
	fmt.Printf("%-4s  %-30s %-27s %-9s %-12s %-10s %s\n",
		"rank", "center (xc, yc, zc)", "extents (L, W, H)", "sigma", "chamfer", "logweight", "contained")
	for i, h := range top {
		p := h.Params
		fmt.Printf("%-4d  (%8.4f, %8.4f, %8.4f)  (%7.4f, %7.4f, %7.4f)  %7.4f  %-12.5g %-10.4g %5.1f%%\n",
			i+1, p.XC, p.YC, p.ZC, p.L, p.W, p.H, p.Sigma,
			h.Chamfer, h.LogWeight, 100*boxfit.ContainedFraction(p, obs))
	}
}

func persistRun(path, source string, obs boxfit.PointCloud, settings boxfit.Settings, ranked []boxfit.RankedHypothesis) error {
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	boundsJSON, err := json.Marshal(settings.Bounds)
	if err != nil {
		return fmt.Errorf("marshal bounds: %w", err)
	}
	store := storage.NewRunStore(db)
	run := &storage.Run{
		Source:        source,
		PointCount:    len(obs),
		ParticleCount: settings.Particles,
		PointsPerEdge: settings.PointsPerEdge,
		Zeta:          settings.Zeta,
		Seed:          int64(settings.Seed),
		BoundsJSON:    boundsJSON,
	}
	if err := store.InsertRun(run); err != nil {
		return err
	}
	if err := store.InsertHypotheses(run.RunID, ranked); err != nil {
		return err
	}
	log.Printf("[boxfit] persisted run %s (%d hypotheses) to %s", run.RunID, len(ranked), path)
	return nil
}
