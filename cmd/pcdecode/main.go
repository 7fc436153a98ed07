// Command pcdecode decodes point-cloud node files and reports what they hold.
//
// Each positional argument is a raw node file laid out per -schema. Output is
// one summary per node, as text or JSON, optionally with a top-down PNG and
// a wire-encoded copy of the decoded bundle.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/pointcloud-decoder/internal/config"
	"github.com/banshee-data/pointcloud-decoder/internal/fsutil"
	"github.com/banshee-data/pointcloud-decoder/internal/monitoring"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/layout"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/preview"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/stats"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/wire"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/worker"
	"github.com/banshee-data/pointcloud-decoder/internal/version"
)

// Options holds parsed command-line settings.
type Options struct {
	ConfigPath  string
	Schema      string
	Version     string
	Scale       float64
	Offset      string
	Workers     int
	PlotDir     string
	WireDir     string
	JSON        bool
	Stream      bool
	Debug       bool
	VersionInfo bool
	Files       []string

	set map[string]bool // flags given explicitly on the command line
}

// NodeSummary is the per-node report.
type NodeSummary struct {
	Name        string                     `json:"name"`
	Points      int                        `json:"points"`
	Mean        [3]float64                 `json:"mean"`
	Box         *BoxSummary                `json:"box,omitempty"`
	Stride      int                        `json:"stride"`
	PackedBytes int                        `json:"packed_bytes"`
	Columns     map[string][]stats.Summary `json:"columns,omitempty"`
	PlotFile    string                     `json:"plot_file,omitempty"`
	WireFile    string                     `json:"wire_file,omitempty"`
	WireBytes   int                        `json:"wire_bytes,omitempty"`
}

// BoxSummary is the tight box of a non-empty node.
type BoxSummary struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("pcdecode: %v", err)
	}
	if opts.VersionInfo {
		fmt.Println("pcdecode", version.String())
		return
	}

	cfg := config.EmptyDecoderConfig()
	if opts.ConfigPath != "" {
		if cfg, err = config.LoadDecoderConfig(opts.ConfigPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := applyFlags(cfg, opts); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	if cfg.GetDebug() {
		monitoring.SetDebugLogger(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, fsutil.OSFileSystem{}, cfg, opts, os.Stdout); err != nil {
		log.Fatalf("pcdecode: %v", err)
	}
}

func parseFlags(args []string, out io.Writer) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("pcdecode", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to decoder JSON config")
	fs.StringVar(&opts.Schema, "schema", "", "Comma-separated record attributes, e.g. POSITION_CARTESIAN,RGBA_PACKED")
	fs.StringVar(&opts.Version, "version", "", "Point-cloud format version (default from config, else 1.8)")
	fs.Float64Var(&opts.Scale, "scale", 0, "Scale applied to quantized positions")
	fs.StringVar(&opts.Offset, "offset", "", "Node offset x,y,z added to legacy positions")
	fs.IntVar(&opts.Workers, "workers", 0, "Concurrent decodes")
	fs.StringVar(&opts.PlotDir, "plot", "", "Write a top-down PNG per node to this directory")
	fs.StringVar(&opts.WireDir, "wire", "", "Write the wire-encoded bundle per node to this directory")
	fs.BoolVar(&opts.JSON, "json", false, "Print summaries as JSON")
	fs.BoolVar(&opts.Stream, "stream", false, "Report nodes as they finish instead of in argument order")
	fs.BoolVar(&opts.Debug, "debug", false, "Log per-node decode details to stderr")
	fs.BoolVar(&opts.VersionInfo, "version-info", false, "Print build information and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pcdecode -schema KEYS [flags] node-file...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.Files = fs.Args()

	if opts.VersionInfo {
		return opts, nil
	}
	if len(opts.Files) == 0 {
		return opts, errors.New("at least one node file is required")
	}
	return opts, nil
}

// applyFlags layers explicitly given flags over cfg and revalidates.
func applyFlags(cfg *config.DecoderConfig, opts Options) error {
	if opts.set["schema"] {
		cfg.Schema = &opts.Schema
	}
	if opts.set["version"] {
		cfg.DefaultVersion = &opts.Version
	}
	if opts.set["scale"] {
		cfg.Scale = &opts.Scale
	}
	if opts.set["offset"] {
		off, err := parseOffset(opts.Offset)
		if err != nil {
			return err
		}
		cfg.NodeOffset = &off
	}
	if opts.set["workers"] {
		cfg.Workers = &opts.Workers
	}
	if opts.set["debug"] {
		cfg.Debug = &opts.Debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.GetSchema() == "" {
		return errors.New("a record schema is required (-schema or config \"schema\")")
	}
	return nil
}

// parseOffset parses "x,y,z".
func parseOffset(s string) ([3]float64, error) {
	var off [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return off, fmt.Errorf("offset %q: want x,y,z", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return off, fmt.Errorf("offset %q: %w", s, err)
		}
		off[i] = v
	}
	return off, nil
}

// nodeName is the file's base name without extension.
func nodeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// maxNodeBytes bounds a single node file read.
const maxNodeBytes = 256 << 20

func buildRequests(fsys fsutil.FileSystem, cfg *config.DecoderConfig, files []string) ([]decode.Request, error) {
	s, err := schema.ParseSchema(cfg.GetSchema())
	if err != nil {
		return nil, err
	}
	reqs := make([]decode.Request, 0, len(files))
	for _, f := range files {
		buf, err := fsutil.ReadNode(fsys, f, maxNodeBytes)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, decode.Request{
			Buffer:     buf,
			Schema:     s,
			Version:    cfg.GetDefaultVersion(),
			NodeOffset: cfg.GetNodeOffset(),
			Scale:      cfg.GetScale(),
			Name:       nodeName(f),
		})
	}
	return reqs, nil
}

func run(ctx context.Context, fsys fsutil.FileSystem, cfg *config.DecoderConfig, opts Options, out io.Writer) error {
	reqs, err := buildRequests(fsys, cfg, opts.Files)
	if err != nil {
		return err
	}
	lay := layout.Build(reqs[0].Schema)
	monitoring.Debugf("[pcdecode] %d nodes, schema %v, version %v, layout stride %d",
		len(reqs), reqs[0].Schema, reqs[0].Version, lay.Stride)

	start := time.Now()
	var summaries []NodeSummary
	report := func(b *decode.Bundle) error {
		sum, err := summarize(fsys, b, lay, cfg, opts)
		if err != nil {
			return err
		}
		if opts.Stream && !opts.JSON {
			printSummary(out, sum)
			return nil
		}
		summaries = append(summaries, sum)
		return nil
	}

	if opts.Stream {
		err = streamDecode(ctx, cfg, reqs, report)
	} else {
		var bundles []*decode.Bundle
		bundles, err = worker.DecodeAll(ctx, reqs, cfg.GetWorkers())
		for _, b := range bundles {
			if err = report(b); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}
	monitoring.Debugf("[pcdecode] decoded %d nodes in %v", len(reqs), time.Since(start))

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	for _, s := range summaries {
		printSummary(out, s)
	}
	return nil
}

// streamDecode runs reqs through a worker pool, reporting each bundle in
// completion order.
func streamDecode(ctx context.Context, cfg *config.DecoderConfig, reqs []decode.Request, report func(*decode.Bundle) error) error {
	pool := worker.NewPool(worker.Config{Workers: cfg.GetWorkers(), QueueSize: cfg.GetQueueSize()})
	if err := pool.Start(); err != nil {
		return err
	}
	defer pool.Stop()

	results := make(chan worker.Result, len(reqs))
	pending := 0
	for _, req := range reqs {
		ch, err := pool.Submit(ctx, req)
		if err != nil {
			return fmt.Errorf("submit %q: %w", req.Name, err)
		}
		pending++
		go func() { results <- <-ch }()
	}

	var firstErr error
	for ; pending > 0; pending-- {
		res := <-results
		if res.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("node %q: %w", res.Name, res.Err)
			}
			continue
		}
		if firstErr == nil {
			firstErr = report(res.Bundle)
		}
	}
	return firstErr
}

func summarize(fsys fsutil.FileSystem, b *decode.Bundle, lay *layout.Layout, cfg *config.DecoderConfig, opts Options) (NodeSummary, error) {
	sum := NodeSummary{
		Name:   b.Name,
		Points: b.NumPoints,
		Mean:   b.Mean,
		Stride: lay.Stride,
	}
	if !b.TightBox.IsEmpty() {
		sum.Box = &BoxSummary{Min: b.TightBox.Min, Max: b.TightBox.Max}
	}

	packed, err := layout.Pack(b, lay)
	if err != nil {
		return sum, fmt.Errorf("node %q: pack: %w", b.Name, err)
	}
	sum.PackedBytes = len(packed)

	if sum.Columns, err = stats.SummarizeBundle(b); err != nil {
		return sum, fmt.Errorf("node %q: stats: %w", b.Name, err)
	}

	if opts.PlotDir != "" {
		path := fsutil.ArtifactPath(opts.PlotDir, b.Name, ".png")
		switch err := preview.TopDown(fsys, b, path, preview.Options{}); {
		case errors.Is(err, preview.ErrNothingToPlot):
			monitoring.Logf("[pcdecode] node %q: no positions, skipping plot", b.Name)
		case err != nil:
			return sum, fmt.Errorf("node %q: %w", b.Name, err)
		default:
			sum.PlotFile = path
		}
	}

	if opts.WireDir != "" {
		payload, err := wire.Marshal(b, wireOptions(cfg))
		if err != nil {
			return sum, fmt.Errorf("node %q: encode: %w", b.Name, err)
		}
		path := fsutil.ArtifactPath(opts.WireDir, b.Name, ".pcb")
		if err := writeArtifact(fsys, path, payload); err != nil {
			return sum, fmt.Errorf("node %q: %w", b.Name, err)
		}
		sum.WireFile = path
		sum.WireBytes = len(payload)
	}
	return sum, nil
}

func writeArtifact(fsys fsutil.FileSystem, path string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func wireOptions(cfg *config.DecoderConfig) wire.Options {
	o := wire.Options{Level: cfg.GetCompressionLevel()}
	if cfg.GetCompression() == "zstd" {
		o.Compression = wire.CompressionZstd
	}
	return o
}

func printSummary(w io.Writer, s NodeSummary) {
	fmt.Fprintf(w, "%s: %d points, stride %d, packed %d bytes\n", s.Name, s.Points, s.Stride, s.PackedBytes)
	fmt.Fprintf(w, "  mean  %.4f %.4f %.4f\n", s.Mean[0], s.Mean[1], s.Mean[2])
	if s.Box != nil {
		fmt.Fprintf(w, "  box   [%.4f %.4f %.4f] .. [%.4f %.4f %.4f]\n",
			s.Box.Min[0], s.Box.Min[1], s.Box.Min[2], s.Box.Max[0], s.Box.Max[1], s.Box.Max[2])
	}
	if s.PlotFile != "" {
		fmt.Fprintf(w, "  plot  %s\n", s.PlotFile)
	}
	if s.WireFile != "" {
		fmt.Fprintf(w, "  wire  %s (%d bytes)\n", s.WireFile, s.WireBytes)
	}
}
