// Package nessus extracts structured vulnerability findings from Nessus v2
// report items.
//
// An Event wraps one ReportItem node supplied by the caller and derives every
// field of the finding on demand. Document loading and traversal live outside
// this package; see the report package for a ready-made walker.
//
// Example usage:
//
//	ev := nessus.NewEvent(item)
//	id, err := ev.PluginID()
//	if err != nil {
//	    return err
//	}
//	if cves, ok := ev.CVE(); ok {
//	    fmt.Println(id, cves)
//	}
package nessus

// Selector names one wire field of a ReportItem: an attribute when Attr is
// set, otherwise a child element.
type Selector struct {
	Name string
	Attr bool
}

func (s Selector) String() string {
	return s.Name
}

// Node is the query surface an Event needs from a document node.
//
// The node must stay valid for as long as any Event built on it is in use.
// Implementations shared across goroutines must tolerate concurrent reads.
type Node interface {
	// Get returns the single child element or attribute matching sel.
	Get(sel Selector) (Node, bool)

	// GetAll returns every child element matching sel in document order.
	GetAll(sel Selector) []Node

	// Text returns the raw text content of the node.
	Text() string
}

// Wire selectors of a ReportItem.
var (
	SelPort         = Selector{Name: "port", Attr: true}
	SelService      = Selector{Name: "svc_name", Attr: true}
	SelProtocol     = Selector{Name: "protocol", Attr: true}
	SelSeverity     = Selector{Name: "severity", Attr: true}
	SelPluginID     = Selector{Name: "pluginID", Attr: true}
	SelPluginFamily = Selector{Name: "pluginFamily", Attr: true}
	SelPluginName   = Selector{Name: "pluginName", Attr: true}

	SelSynopsis             = Selector{Name: "synopsis"}
	SelDescription          = Selector{Name: "description"}
	SelSolution             = Selector{Name: "solution"}
	SelRiskFactor           = Selector{Name: "risk_factor"}
	SelPluginOutput         = Selector{Name: "plugin_output"}
	SelPluginVersion        = Selector{Name: "plugin_version"}
	SelPatchPublicationDate = Selector{Name: "patch_publication_date"}
	SelCVSSBaseScore        = Selector{Name: "cvss_base_score"}
	SelCVSSVector           = Selector{Name: "cvss_vector"}
	SelCVSS3BaseScore       = Selector{Name: "cvss3_base_score"}
	SelCVSS3Vector          = Selector{Name: "cvss3_vector"}

	SelSeeAlso = Selector{Name: "see_also"}
	SelCVE     = Selector{Name: "cve"}
	SelBID     = Selector{Name: "bid"}
	SelXRef    = Selector{Name: "xref"}
	SelCPE     = Selector{Name: "cpe"}
)
