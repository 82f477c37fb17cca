// Record-to-particle binder: the external-contract consumer of §4.8.
// Resolves the required x/y columns and optional speed/value columns
// by name, then allocates one particle per record until the stream is
// exhausted, the store is full, or a caller-specified cap is hit.
package record

import (
	"math"

	"github.com/pthm-cable/fieldglass/particle"
	"github.com/pthm-cable/fieldglass/simerr"
)

// goldenAngle spaces successive records' initial headings so a
// speed-only record set fans out instead of all pointing one way,
// without needing any per-record direction data.
const goldenAngle = 2.399963229728653 // radians, (3-sqrt(5))*pi

// BindConfig controls how optional fields translate into initial
// velocity and how many records are consumed.
type BindConfig struct {
	// MaxRecords caps how many records are bound; 0 means unbounded
	// (consume until stream exhaustion or the store is full).
	MaxRecords int
	// XColumn and YColumn name the schema columns read as a
	// particle's initial position. Default to "x" and "y" when left
	// empty, so streams that shape naturally as Cartesian coordinates
	// (CSV, JSON) need no configuration; streams whose columns mean
	// something else (e.g. sysmetrics' cpu_pct/mem_pct) set these to
	// remap without renaming the stream's own schema.
	XColumn, YColumn string
	// Heading returns the initial velocity direction, in radians, for
	// the record at the given index. Defaults to a golden-angle
	// sweep when nil.
	Heading func(index int) float64
	// Errs, if non-nil, receives every error from the stream's
	// ReadNext and the store's Allocate, whether or not it aborts
	// binding (e.g. a full store is expected and non-fatal, but still
	// worth counting by kind). Schema and missing-column errors are
	// returned to the caller without being recorded here.
	Errs *simerr.Stats
}

func (c BindConfig) xColumn() string {
	if c.XColumn != "" {
		return c.XColumn
	}
	return "x"
}

func (c BindConfig) yColumn() string {
	if c.YColumn != "" {
		return c.YColumn
	}
	return "y"
}

func (c BindConfig) heading(index int) float64 {
	if c.Heading != nil {
		return c.Heading(index)
	}
	return float64(index) * goldenAngle
}

// Result reports how many particles were bound and why binding
// stopped.
type Result struct {
	Bound        int
	StoreFull    bool
	StreamEnded  bool
	ReachedLimit bool
}

// Bind requests stream's schema, locates the configured x/y
// (required) and speed/value (optional) columns, then seeds store
// with one particle per record. Returns InvalidParameter if a
// required column is missing.
func Bind(stream RecordStream, store *particle.Store, cfg BindConfig) (Result, error) {
	schema, err := stream.Schema()
	if err != nil {
		return Result{}, err
	}

	xCol, yCol := cfg.xColumn(), cfg.yColumn()
	xi, ok := schema.IndexOf(xCol)
	if !ok {
		return Result{}, simerr.New(simerr.InvalidParameter, "record.Bind", "schema missing required column \""+xCol+"\"")
	}
	yi, ok := schema.IndexOf(yCol)
	if !ok {
		return Result{}, simerr.New(simerr.InvalidParameter, "record.Bind", "schema missing required column \""+yCol+"\"")
	}
	speedIdx, hasSpeed := schema.IndexOf("speed")
	_, hasValue := schema.IndexOf("value")
	_ = hasValue // value is accepted by the schema but not yet consumed by any particle field

	var result Result
	for stream.HasNext() {
		if cfg.MaxRecords > 0 && result.Bound >= cfg.MaxRecords {
			result.ReachedLimit = true
			break
		}

		rec, err := stream.ReadNext()
		if err != nil {
			cfg.Errs.Record(err)
			if e, ok := err.(*simerr.Error); ok && e.Kind == simerr.OutOfRange {
				result.StreamEnded = true
				break
			}
			return result, err
		}

		h, err := store.Allocate()
		if err != nil {
			cfg.Errs.Record(err)
			result.StoreFull = true
			break
		}

		p := store.Get(h)
		p.X = float32(rec.Float(xi))
		p.Y = float32(rec.Float(yi))

		if hasSpeed {
			speed := rec.Float(speedIdx)
			angle := cfg.heading(result.Bound)
			p.VX = float32(speed * math.Cos(angle))
			p.VY = float32(speed * math.Sin(angle))
		}

		result.Bound++
	}

	if !result.StoreFull && !result.ReachedLimit {
		result.StreamEnded = !stream.HasNext()
	}
	return result, nil
}
