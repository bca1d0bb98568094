package nessus

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/exploopio/nessus/pkg/errors"
	"github.com/exploopio/nessus/pkg/shared/severity"
)

// patchDateLayouts are tried in order after the " UTC" marker is appended.
var patchDateLayouts = []string{
	"2006/1/2 MST",
	"1/2/2006 MST",
	"2006-01-02 MST",
}

// lazy is a write-once cache slot. The first call to get computes the value;
// every later call returns it, including a cached error.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(fn func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = fn()
	})
	return l.val, l.err
}

type optional[T any] struct {
	val T
	ok  bool
}

type dated struct {
	at time.Time
	ok bool
}

// Event is one finding of a Nessus report.
//
// Every accessor is computed on first use and cached for the lifetime of the
// Event. Returned slices are the cached instances and must not be modified.
// An Event borrows its node: the document it came from must outlive it.
type Event struct {
	node Node

	port        lazy[Port]
	severity    lazy[int]
	id          lazy[int]
	family      lazy[string]
	name        lazy[optional[string]]
	synopsis    lazy[optional[string]]
	description lazy[optional[string]]
	solution    lazy[optional[string]]
	risk        lazy[optional[string]]
	output      lazy[optional[string]]
	version     lazy[optional[string]]
	cvssVector  lazy[optional[string]]
	cvss3Vector lazy[optional[string]]
	seeAlso     lazy[[]string]
	patchDate   lazy[dated]
	cvssScore   lazy[float64]
	cvss3Score  lazy[float64]
	cve         lazy[optional[[]string]]
	bid         lazy[optional[[]string]]
	xref        lazy[[]string]
	cpe         lazy[[]string]
}

// NewEvent wraps a ReportItem node.
func NewEvent(node Node) *Event {
	return &Event{node: node}
}

// =============================================================================
// Port and severity
// =============================================================================

// Port returns the port tuple the finding was reported on.
func (e *Event) Port() Port {
	p, _ := e.port.get(func() (Port, error) {
		number, _ := e.text(SelPort)
		service, _ := e.text(SelService)
		protocol, _ := e.text(SelProtocol)
		return NewPort(number, service, protocol), nil
	})
	return p
}

// Severity returns the raw 0-4 severity. A missing attribute is an error.
func (e *Event) Severity() (int, error) {
	return e.severity.get(func() (int, error) {
		return e.requiredInt("nessus.Event.Severity", SelSeverity)
	})
}

// Level returns the severity as a SeverityLevel.
func (e *Event) Level() (SeverityLevel, error) {
	sev, err := e.Severity()
	if err != nil {
		return Unclassified, err
	}
	return LevelOf(sev), nil
}

// Normalized returns the severity on the cross-scanner scale.
func (e *Event) Normalized() (severity.Level, error) {
	l, err := e.Level()
	if err != nil {
		return severity.Unknown, err
	}
	return l.Normalized(), nil
}

func (e *Event) is(want SeverityLevel) (bool, error) {
	l, err := e.Level()
	if err != nil {
		return false, err
	}
	return l == want, nil
}

// Informational reports whether the severity is exactly 0.
func (e *Event) Informational() (bool, error) { return e.is(Informational) }

// Low reports whether the severity is exactly 1.
func (e *Event) Low() (bool, error) { return e.is(Low) }

// Medium reports whether the severity is exactly 2.
func (e *Event) Medium() (bool, error) { return e.is(Medium) }

// High reports whether the severity is exactly 3.
func (e *Event) High() (bool, error) { return e.is(High) }

// Critical reports whether the severity is exactly 4. Values above 4 are
// not critical.
func (e *Event) Critical() (bool, error) { return e.is(Critical) }

// =============================================================================
// Plugin identity
// =============================================================================

// ID returns the plugin id.
func (e *Event) ID() (int, error) {
	return e.id.get(func() (int, error) {
		n, ok := e.node.Get(SelPluginID)
		if !ok {
			return 0, errors.MissingField("nessus.Event.ID", SelPluginID.Name, "")
		}
		id, err := strconv.Atoi(strings.TrimSpace(n.Text()))
		if err != nil {
			return 0, errors.Malformed(errors.KindMalformedDocument, "nessus.Event.ID", SelPluginID.Name, "", err)
		}
		return id, nil
	})
}

// PluginID is an alias for ID.
func (e *Event) PluginID() (int, error) { return e.ID() }

// Family returns the plugin family.
func (e *Event) Family() (string, error) {
	return e.family.get(func() (string, error) {
		s, ok := e.text(SelPluginFamily)
		if !ok {
			return "", errors.MissingField("nessus.Event.Family", SelPluginFamily.Name, e.knownID())
		}
		return s, nil
	})
}

// PluginFamily is an alias for Family.
func (e *Event) PluginFamily() (string, error) { return e.Family() }

// Name returns the plugin name. An empty name is reported as absent.
func (e *Event) Name() (string, bool) {
	v, _ := e.name.get(func() (optional[string], error) {
		s, ok := e.text(SelPluginName)
		return nonEmpty(s, ok), nil
	})
	return v.val, v.ok
}

// PluginName is an alias for Name.
func (e *Event) PluginName() (string, bool) { return e.Name() }

// nonEmpty folds empty text into absence. Only the plugin name uses it.
func nonEmpty(s string, ok bool) optional[string] {
	if !ok || s == "" {
		return optional[string]{}
	}
	return optional[string]{val: s, ok: true}
}

// =============================================================================
// Text sections
// =============================================================================

// Synopsis returns the synopsis element text.
func (e *Event) Synopsis() (string, bool) { return e.optText(&e.synopsis, SelSynopsis) }

// Description returns the description element text.
func (e *Event) Description() (string, bool) { return e.optText(&e.description, SelDescription) }

// Solution returns the solution element text.
func (e *Event) Solution() (string, bool) { return e.optText(&e.solution, SelSolution) }

// Risk returns the risk_factor element text.
func (e *Event) Risk() (string, bool) { return e.optText(&e.risk, SelRiskFactor) }

// RiskLevel maps risk_factor onto the shared severity scale. A missing or
// unrecognized risk factor is severity.Unknown.
func (e *Event) RiskLevel() severity.Level {
	s, ok := e.Risk()
	if !ok {
		return severity.Unknown
	}
	return severity.FromString(s)
}

// Output returns the plugin_output element text.
func (e *Event) Output() (string, bool) { return e.optText(&e.output, SelPluginOutput) }

// Data is an alias for Output.
func (e *Event) Data() (string, bool) { return e.Output() }

// PluginOutput is an alias for Output.
func (e *Event) PluginOutput() (string, bool) { return e.Output() }

// Version returns the plugin_version element text.
func (e *Event) Version() (string, bool) { return e.optText(&e.version, SelPluginVersion) }

// PluginVersion is an alias for Version.
func (e *Event) PluginVersion() (string, bool) { return e.Version() }

// CVSSVector returns the cvss_vector element text.
func (e *Event) CVSSVector() (string, bool) { return e.optText(&e.cvssVector, SelCVSSVector) }

// CVSS3Vector returns the cvss3_vector element text.
func (e *Event) CVSS3Vector() (string, bool) { return e.optText(&e.cvss3Vector, SelCVSS3Vector) }

// =============================================================================
// References
// =============================================================================

// SeeAlso returns every see_also entry in document order, never nil.
func (e *Event) SeeAlso() []string { return e.list(&e.seeAlso, SelSeeAlso) }

// Links is an alias for SeeAlso.
func (e *Event) Links() []string { return e.SeeAlso() }

// More is an alias for SeeAlso.
func (e *Event) More() []string { return e.SeeAlso() }

// References is an alias for SeeAlso.
func (e *Event) References() []string { return e.SeeAlso() }

// CVE returns the CVE identifiers. ok is false when the item lists none.
func (e *Event) CVE() ([]string, bool) { return e.optList(&e.cve, SelCVE) }

// BID returns the Bugtraq identifiers. ok is false when the item lists none.
func (e *Event) BID() ([]string, bool) { return e.optList(&e.bid, SelBID) }

// XRef returns the cross references, never nil.
func (e *Event) XRef() []string { return e.list(&e.xref, SelXRef) }

// CPE returns the platform enumerations, never nil.
func (e *Event) CPE() []string { return e.list(&e.cpe, SelCPE) }

// =============================================================================
// Dates and scores
// =============================================================================

// PatchPublicationDate returns the patch date interpreted as UTC. ok is false
// when the element is missing; unparseable text is an error.
func (e *Event) PatchPublicationDate() (time.Time, bool, error) {
	d, err := e.patchDate.get(func() (dated, error) {
		raw, ok := e.text(SelPatchPublicationDate)
		if !ok {
			return dated{}, nil
		}
		at, err := parsePatchDate(raw)
		if err != nil {
			return dated{}, errors.Malformed(errors.KindMalformedDate,
				"nessus.Event.PatchPublicationDate", SelPatchPublicationDate.Name, e.knownID(), err)
		}
		return dated{at: at, ok: true}, nil
	})
	return d.at, d.ok, err
}

func parsePatchDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw) + " UTC"
	for _, layout := range patchDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// CVSSBaseScore returns the CVSS v2 base score, 0.0 when missing or not a number.
func (e *Event) CVSSBaseScore() float64 { return e.score(&e.cvssScore, SelCVSSBaseScore) }

// CVSS3BaseScore returns the CVSS v3 base score, 0.0 when missing or not a number.
func (e *Event) CVSS3BaseScore() float64 { return e.score(&e.cvss3Score, SelCVSS3BaseScore) }

// =============================================================================
// Helpers
// =============================================================================

func (e *Event) text(sel Selector) (string, bool) {
	n, ok := e.node.Get(sel)
	if !ok {
		return "", false
	}
	return n.Text(), true
}

func (e *Event) requiredInt(op string, sel Selector) (int, error) {
	raw, ok := e.text(sel)
	if !ok {
		return 0, errors.MissingField(op, sel.Name, e.knownID())
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Malformed(errors.KindMalformedDocument, op, sel.Name, e.knownID(), err)
	}
	return n, nil
}

// knownID returns the plugin id for error context, or "" if it cannot be read.
func (e *Event) knownID() string {
	id, err := e.ID()
	if err != nil {
		return ""
	}
	return strconv.Itoa(id)
}

func (e *Event) optText(slot *lazy[optional[string]], sel Selector) (string, bool) {
	v, _ := slot.get(func() (optional[string], error) {
		s, ok := e.text(sel)
		return optional[string]{val: s, ok: ok}, nil
	})
	return v.val, v.ok
}

func (e *Event) collect(sel Selector) []string {
	nodes := e.node.GetAll(sel)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text())
	}
	return out
}

func (e *Event) list(slot *lazy[[]string], sel Selector) []string {
	v, _ := slot.get(func() ([]string, error) {
		return e.collect(sel), nil
	})
	return v
}

func (e *Event) optList(slot *lazy[optional[[]string]], sel Selector) ([]string, bool) {
	v, _ := slot.get(func() (optional[[]string], error) {
		vals := e.collect(sel)
		if len(vals) == 0 {
			return optional[[]string]{}, nil
		}
		return optional[[]string]{val: vals, ok: true}, nil
	})
	return v.val, v.ok
}

func (e *Event) score(slot *lazy[float64], sel Selector) float64 {
	v, _ := slot.get(func() (float64, error) {
		raw, ok := e.text(sel)
		if !ok {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, nil
		}
		return f, nil
	})
	return v
}
