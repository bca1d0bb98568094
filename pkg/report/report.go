// Package report loads Nessus v2 documents and walks their findings.
//
// It is the caller side of the nessus package: it owns the parsed document,
// builds one nessus.Event per ReportItem and isolates failures per finding so
// one malformed item does not abort the rest of the report.
//
// Example usage:
//
//	rep, err := report.Open(ctx, "scan.nessus.zst", options.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	err = rep.Walk(ctx, func(it report.Item) error {
//	    fmt.Println(it.Host, it.Event.Port())
//	    return nil
//	})
package report

import (
	"context"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"

	"github.com/exploopio/nessus/pkg/compress"
	"github.com/exploopio/nessus/pkg/errors"
	"github.com/exploopio/nessus/pkg/metrics"
	"github.com/exploopio/nessus/pkg/nessus"
	"github.com/exploopio/nessus/pkg/nessus/xmlnode"
	"github.com/exploopio/nessus/pkg/options"
	"github.com/exploopio/nessus/pkg/shared/fingerprint"
	"github.com/exploopio/nessus/pkg/shared/severity"
)

const rootElement = "NessusClientData_v2"

// Report is a parsed Nessus document. Events obtained from Walk borrow its
// nodes and stay valid while the Report is reachable.
type Report struct {
	id   string
	root *xmlquery.Node
	cfg  *options.ReaderConfig
}

// Item is one finding together with the host it was reported on.
type Item struct {
	Host  string
	Event *nessus.Event
}

// Fingerprint returns the deduplication key of the finding.
func (it Item) Fingerprint() (string, error) {
	id, err := it.Event.PluginID()
	if err != nil {
		return "", err
	}
	p := it.Event.Port()
	return fingerprint.Generate(fingerprint.Input{
		Host:     it.Host,
		Port:     p.Number,
		Protocol: p.Protocol,
		PluginID: id,
	}), nil
}

// Open loads the report stored at path.
func Open(ctx context.Context, path string, opts ...options.ReaderOption) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.KindInvalidInput, "report.Open", "cannot open report", err)
	}
	defer f.Close()
	return Load(ctx, f, opts...)
}

// Load reads a whole document from r. zstd and gzip input is decompressed
// transparently.
func Load(ctx context.Context, r io.Reader, opts ...options.ReaderOption) (*Report, error) {
	const op = "report.Load"

	if r == nil {
		return nil, errors.E(errors.KindInvalidInput, op, "nil reader")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := options.NewReaderConfig(opts...)
	timer := metrics.NewTimer(cfg.Collector, metrics.ReportLoadDuration.Name)

	rc, alg, err := compress.NewReader(r)
	if err != nil {
		return nil, errors.E(errors.KindMalformedDocument, op, "cannot decompress report", err)
	}
	defer rc.Close()

	limited := &io.LimitedReader{R: rc, N: cfg.MaxReportSize + 1}
	root, err := xmlquery.Parse(limited)
	read := cfg.MaxReportSize + 1 - limited.N
	if limited.N <= 0 {
		return nil, errors.E(errors.KindInvalidInput, op, "report exceeds size limit")
	}
	if err != nil {
		return nil, errors.E(errors.KindMalformedDocument, op, "cannot parse report", err)
	}
	if xmlquery.FindOne(root, "/"+rootElement) == nil {
		return nil, errors.E(errors.KindMalformedDocument, op, "missing "+rootElement+" root")
	}

	rep := &Report{
		id:   uuid.NewString(),
		root: root,
		cfg:  cfg,
	}

	cfg.Collector.CounterAdd(metrics.ReportBytesTotal.Name, float64(read), "compression", string(alg))
	d := timer.ObserveDuration()
	cfg.Logger.Debug("report %s loaded: %d bytes, compression=%s, took %s", rep.id, read, alg, d)

	return rep, nil
}

// ID identifies this load in log lines.
func (r *Report) ID() string {
	return r.id
}

// Name returns the name attribute of the Report element.
func (r *Report) Name() string {
	n := xmlquery.FindOne(r.root, "/"+rootElement+"/Report")
	if n == nil {
		return ""
	}
	return n.SelectAttr("name")
}

// Hosts returns the ReportHost names in document order.
func (r *Report) Hosts() []string {
	var names []string
	for _, h := range xmlquery.Find(r.root, "//ReportHost") {
		names = append(names, h.SelectAttr("name"))
	}
	return names
}

// Walk calls fn for every finding in document order.
//
// Before fn sees an item its required fields and patch date are checked. A
// failing item is logged and skipped, or returned when the reader is strict.
// An error from fn stops the walk and is returned as-is.
func (r *Report) Walk(ctx context.Context, fn func(Item) error) error {
	hosts, err := xmlquery.QueryAll(r.root, "//ReportHost")
	if err != nil {
		return errors.E(errors.KindMalformedDocument, "report.Walk", "cannot select hosts", err)
	}

	for _, h := range hosts {
		host := h.SelectAttr("name")
		for _, n := range xmlquery.Find(h, "ReportItem") {
			if err := ctx.Err(); err != nil {
				return err
			}

			it := Item{Host: host, Event: nessus.NewEvent(xmlnode.Wrap(n))}
			if err := check(it.Event); err != nil {
				if r.cfg.Strict {
					return errors.Wrap(err, "report.Walk")
				}
				r.cfg.Logger.Warn("report %s: skipping item on host %s: %v", r.id, host, err)
				r.cfg.Collector.CounterInc(metrics.ReportItemsTotal.Name, "status", metrics.StatusSkipped)
				continue
			}

			r.cfg.Collector.CounterInc(metrics.ReportItemsTotal.Name, "status", metrics.StatusOK)
			r.cfg.Collector.CounterInc(metrics.ReportItemsBySeverity.Name, "severity", Level(it.Event).String())

			if err := fn(it); err != nil {
				return err
			}
		}
	}
	return nil
}

// Events collects every valid finding. Invalid ones are handled as in Walk.
func (r *Report) Events(ctx context.Context) ([]Item, error) {
	var items []Item
	err := r.Walk(ctx, func(it Item) error {
		items = append(items, it)
		return nil
	})
	return items, err
}

// Level places a finding on the shared severity scale. Severities outside
// 0-4 fall back to the risk factor, then to the CVSS v3 and v2 base scores.
func Level(ev *nessus.Event) severity.Level {
	if level, err := ev.Normalized(); err == nil && level != severity.Unknown {
		return level
	}
	if level := ev.RiskLevel(); level != severity.Unknown {
		return level
	}
	if score := ev.CVSS3BaseScore(); score > 0 {
		return severity.FromCVSS(score)
	}
	if score := ev.CVSSBaseScore(); score > 0 {
		return severity.FromCVSS(score)
	}
	return severity.Unknown
}

// check touches every field whose failure is fatal for a finding.
func check(ev *nessus.Event) error {
	if _, err := ev.PluginID(); err != nil {
		return err
	}
	if _, err := ev.Severity(); err != nil {
		return err
	}
	if _, err := ev.PluginFamily(); err != nil {
		return err
	}
	if _, _, err := ev.PatchPublicationDate(); err != nil {
		return err
	}
	return nil
}
