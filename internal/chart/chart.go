// Package chart renders benchmark comparisons to image files with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/tiancaiamao/allocbench"
)

var (
	darkBlue   = color.RGBA{R: 0x00, G: 0x00, B: 0x8b, A: 0xff}
	blue       = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	lightBlue  = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff}
	darkRed    = color.RGBA{R: 0x8b, G: 0x00, B: 0x00, A: 0xff}
	red        = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	lightCoral = color.RGBA{R: 0xf0, G: 0x80, B: 0x80, A: 0xff}
	lightGray  = color.RGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}
	gray       = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// Options are the rendering settings shared by all charts of a run.
type Options struct {
	Baseline  string
	Candidate string
	Format    string

	UnitWidth     vg.Length
	UnitHeight    vg.Length
	ProgramWidth  vg.Length
	ProgramHeight vg.Length
}

// OptionsFromConfig converts the sizes of cfg, given in inches.
func OptionsFromConfig(cfg allocbench.Config) Options {
	return Options{
		Baseline:      cfg.Baseline,
		Candidate:     cfg.Candidate,
		Format:        cfg.Format,
		UnitWidth:     vg.Length(cfg.UnitWidth) * vg.Inch,
		UnitHeight:    vg.Length(cfg.UnitHeight) * vg.Inch,
		ProgramWidth:  vg.Length(cfg.ProgramWidth) * vg.Inch,
		ProgramHeight: vg.Length(cfg.ProgramHeight) * vg.Inch,
	}
}

type fontSizes struct {
	title, label, tick vg.Length
}

var (
	unitFonts    = fontSizes{title: 14, label: 12, tick: 12}
	programFonts = fontSizes{title: 26, label: 25, tick: 24}
)

func setupPlot(title string, fs fontSizes) *plot.Plot {
	p := plot.New()

	p.Title.Text = title
	p.Title.TextStyle.Font.Size = fs.title
	p.X.Label.TextStyle.Font.Size = fs.label
	p.Y.Label.TextStyle.Font.Size = fs.label
	p.X.Tick.Label.Font.Size = fs.tick
	p.Y.Tick.Label.Font.Size = fs.tick
	p.Legend.TextStyle.Font.Size = fs.tick
	p.Legend.Padding = 1 * vg.Millimeter

	return p
}

// relabel returns a ticker placing ticks like t but labelling every major
// tick with format.
func relabel(t plot.Ticker, format func(float64) string) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		ticks := t.Ticks(min, max)
		for i := range ticks {
			if ticks[i].Label != "" {
				ticks[i].Label = format(ticks[i].Value)
			}
		}
		return ticks
	})
}

// widenLogRange keeps a log axis drawable when all the data sits on a
// single value, where plot would otherwise widen the range by one unit on
// each side and possibly reach zero.
func widenLogRange(a *plot.Axis) {
	if a.Min == a.Max {
		a.Min /= 2
		a.Max *= 2
	}
}

// Renderer writes charts into a directory.
type Renderer struct {
	outDir string
	opts   Options
	logger *zap.Logger
}

func NewRenderer(outDir string, opts Options, logger *zap.Logger) *Renderer {
	return &Renderer{outDir: outDir, opts: opts, logger: logger}
}

func (r *Renderer) save(p *plot.Plot, w, h vg.Length, basename string) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.outDir, basename+"."+r.opts.Format)
	if err := p.Save(w, h, path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	r.logger.Debug("chart saved", zap.String("path", path))
	return path, nil
}

// Unit renders the chart of one unit benchmark.
func (r *Renderer) Unit(b allocbench.UnitBench) (string, error) {
	p, err := UnitPlot(b, r.opts, r.logger)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.Name, err)
	}
	return r.save(p, r.opts.UnitWidth, r.opts.UnitHeight, b.Name)
}

// Program renders the time and memory charts of one program benchmark.
func (r *Renderer) Program(ps allocbench.ProgramSummary) ([]string, error) {
	tp, err := ProgramTimePlot(ps, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ps.Name, err)
	}
	timePath, err := r.save(tp, r.opts.ProgramWidth, r.opts.ProgramHeight, ps.Name+"_time")
	if err != nil {
		return nil, err
	}

	mp, err := ProgramMemoryPlot(ps, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ps.Name, err)
	}
	memPath, err := r.save(mp, r.opts.ProgramWidth, r.opts.ProgramHeight, ps.Name+"_memory")
	if err != nil {
		return nil, err
	}
	return []string{timePath, memPath}, nil
}

// All renders every chart of a run and returns the written paths.
func (r *Renderer) All(res *allocbench.Results, sum *allocbench.RunSummary) ([]string, error) {
	var paths []string
	for _, u := range res.Units {
		path, err := r.Unit(u)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	for _, ps := range sum.Programs {
		ps, err := r.Program(ps)
		if err != nil {
			return paths, err
		}
		paths = append(paths, ps...)
	}
	return paths, nil
}
