package report

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exploopio/nessus/pkg/compress"
	"github.com/exploopio/nessus/pkg/core"
	"github.com/exploopio/nessus/pkg/errors"
	"github.com/exploopio/nessus/pkg/metrics"
	"github.com/exploopio/nessus/pkg/options"
	"github.com/exploopio/nessus/pkg/shared/severity"
)

const sampleReport = `<?xml version="1.0" ?>
<NessusClientData_v2>
<Policy><policyName>Basic Network Scan</policyName></Policy>
<Report name="Weekly perimeter" xmlns:cm="http://www.nessus.org/cm">
<ReportHost name="10.0.0.5">
<HostProperties><tag name="host-ip">10.0.0.5</tag></HostProperties>
<ReportItem port="0" svc_name="general" protocol="tcp" severity="0" pluginID="19506" pluginName="Nessus Scan Information" pluginFamily="Settings">
<plugin_output>Nessus version : 10.6.1</plugin_output>
</ReportItem>
<ReportItem port="443" svc_name="https" protocol="tcp" severity="3" pluginID="73412" pluginName="OpenSSL Heartbeat Information Disclosure (Heartbleed)" pluginFamily="Misc.">
<cve>CVE-2014-0160</cve>
<cvss_base_score>5.0</cvss_base_score>
<patch_publication_date>2014/04/07</patch_publication_date>
</ReportItem>
<ReportItem port="22" svc_name="ssh" protocol="tcp" pluginID="10267" pluginName="SSH Server Type and Version Information" pluginFamily="Service detection">
</ReportItem>
</ReportHost>
<ReportHost name="web01.corp.example">
<ReportItem port="80" svc_name="www" protocol="tcp" severity="2" pluginID="11213" pluginName="HTTP TRACE / TRACK Methods Allowed" pluginFamily="Web Servers">
<patch_publication_date>not-a-date</patch_publication_date>
</ReportItem>
<ReportItem port="80" svc_name="www" protocol="tcp" severity="4" pluginID="156860" pluginName="Apache Log4Shell" pluginFamily="Web Servers">
<cve>CVE-2021-44228</cve>
</ReportItem>
</ReportHost>
</Report>
</NessusClientData_v2>`

func load(t *testing.T, data []byte, opts ...options.ReaderOption) *Report {
	t.Helper()
	rep, err := Load(context.Background(), bytes.NewReader(data), opts...)
	require.NoError(t, err)
	return rep
}

func TestLoad_Compression(t *testing.T) {
	for _, alg := range []compress.Algorithm{compress.AlgorithmNone, compress.AlgorithmGzip, compress.AlgorithmZSTD} {
		t.Run(string(alg), func(t *testing.T) {
			packed, err := compress.Compress(alg, []byte(sampleReport))
			require.NoError(t, err)

			collector := metrics.NewInMemoryCollector()
			rep := load(t, packed, options.WithCollector(collector))

			assert.Equal(t, "Weekly perimeter", rep.Name())
			assert.NotEmpty(t, rep.ID())
			assert.Equal(t, []string{"10.0.0.5", "web01.corp.example"}, rep.Hosts())
			assert.Equal(t, float64(len(sampleReport)),
				collector.GetCounter(metrics.ReportBytesTotal.Name, "compression", string(alg)))
			assert.Len(t, collector.GetHistogram(metrics.ReportLoadDuration.Name), 1)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, nil)
	assert.Equal(t, errors.KindInvalidInput, errors.GetKind(err))

	_, err = Load(ctx, strings.NewReader(`<Other/>`))
	assert.True(t, errors.IsMalformedDocument(err))

	_, err = Load(ctx, strings.NewReader(`<NessusClientData_v2><Report></Foo>`))
	assert.True(t, errors.IsMalformedDocument(err))

	_, err = Load(ctx, strings.NewReader(sampleReport), options.WithMaxReportSize(64))
	assert.Equal(t, errors.KindInvalidInput, errors.GetKind(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Load(cancelled, strings.NewReader(sampleReport))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	packed, err := compress.Compress(compress.AlgorithmZSTD, []byte(sampleReport))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scan.nessus.zst")
	require.NoError(t, os.WriteFile(path, packed, 0o600))

	rep, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Weekly perimeter", rep.Name())

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing.nessus"))
	assert.Equal(t, errors.KindInvalidInput, errors.GetKind(err))
}

func TestWalk_SkipsMalformedItems(t *testing.T) {
	zcore, logs := observer.New(zapcore.WarnLevel)
	collector := metrics.NewInMemoryCollector()
	rep := load(t, []byte(sampleReport),
		options.WithLogger(core.NewZapLogger(zap.New(zcore))),
		options.WithCollector(collector),
	)

	items, err := rep.Events(context.Background())
	require.NoError(t, err)

	var ids []int
	for _, it := range items {
		id, err := it.Event.PluginID()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{19506, 73412, 156860}, ids)
	assert.Equal(t, "10.0.0.5", items[0].Host)
	assert.Equal(t, "web01.corp.example", items[2].Host)

	assert.Equal(t, 3.0, collector.GetCounter(metrics.ReportItemsTotal.Name, "status", metrics.StatusOK))
	assert.Equal(t, 2.0, collector.GetCounter(metrics.ReportItemsTotal.Name, "status", metrics.StatusSkipped))
	assert.Equal(t, 1.0, collector.GetCounter(metrics.ReportItemsBySeverity.Name, "severity", "critical"))
	assert.Equal(t, 1.0, collector.GetCounter(metrics.ReportItemsBySeverity.Name, "severity", "info"))

	warnings := logs.All()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, `field "severity", plugin 10267`)
	assert.Contains(t, warnings[1].Message, `field "patch_publication_date", plugin 11213`)
}

func TestLevel_FallsBackForUnclassifiedSeverity(t *testing.T) {
	const doc = `<NessusClientData_v2><Report name="fallbacks"><ReportHost name="10.0.0.9">
<ReportItem port="0" svc_name="general" protocol="tcp" severity="2" pluginID="1" pluginFamily="General"><risk_factor>Critical</risk_factor></ReportItem>
<ReportItem port="0" svc_name="general" protocol="tcp" severity="7" pluginID="2" pluginFamily="General"><risk_factor>High</risk_factor></ReportItem>
<ReportItem port="0" svc_name="general" protocol="tcp" severity="7" pluginID="3" pluginFamily="General"><cvss3_base_score>9.8</cvss3_base_score><cvss_base_score>5.0</cvss_base_score></ReportItem>
<ReportItem port="0" svc_name="general" protocol="tcp" severity="7" pluginID="4" pluginFamily="General"><cvss_base_score>5.0</cvss_base_score></ReportItem>
<ReportItem port="0" svc_name="general" protocol="tcp" severity="7" pluginID="5" pluginFamily="General"></ReportItem>
</ReportHost></Report></NessusClientData_v2>`

	collector := metrics.NewInMemoryCollector()
	rep := load(t, []byte(doc), options.WithCollector(collector))
	items, err := rep.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)

	want := []severity.Level{severity.Medium, severity.High, severity.Critical, severity.Medium, severity.Unknown}
	for i, it := range items {
		assert.Equal(t, want[i], Level(it.Event), "item %d", i)
	}
	assert.Equal(t, 2.0, collector.GetCounter(metrics.ReportItemsBySeverity.Name, "severity", "medium"))
	assert.Equal(t, 1.0, collector.GetCounter(metrics.ReportItemsBySeverity.Name, "severity", "unknown"))
}

func TestWalk_PrometheusCollector(t *testing.T) {
	collector := metrics.NewPrometheusCollector(&metrics.PrometheusConfig{RegisterDefaultMetrics: true})
	rep := load(t, []byte(sampleReport), options.WithCollector(collector))

	_, err := rep.Events(context.Background())
	require.NoError(t, err)

	expected := `
# HELP nessus_report_items_total Report items walked, by outcome
# TYPE nessus_report_items_total counter
nessus_report_items_total{status="ok"} 3
nessus_report_items_total{status="skipped"} 2
`
	require.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected),
		metrics.ReportItemsTotal.Name))
}

func TestWalk_Strict(t *testing.T) {
	rep := load(t, []byte(sampleReport), options.WithStrict(true))

	var seen int
	err := rep.Walk(context.Background(), func(Item) error {
		seen++
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsMissingRequiredField(err))
	assert.Equal(t, "severity", errors.Selector(err))
	assert.Equal(t, 2, seen)
}

func TestWalk_CallbackErrorStops(t *testing.T) {
	rep := load(t, []byte(sampleReport))
	stop := stderrors.New("stop")

	var seen int
	err := rep.Walk(context.Background(), func(Item) error {
		seen++
		return stop
	})
	assert.Same(t, stop, err)
	assert.Equal(t, 1, seen)
}

func TestWalk_Cancelled(t *testing.T) {
	rep := load(t, []byte(sampleReport))
	ctx, cancel := context.WithCancel(context.Background())

	err := rep.Walk(ctx, func(Item) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_EventsStayUsable(t *testing.T) {
	rep := load(t, []byte(sampleReport))
	items, err := rep.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	heartbleed := items[1].Event
	assert.Equal(t, "https (443/tcp)", heartbleed.Port().String())
	cve, ok := heartbleed.CVE()
	assert.True(t, ok)
	assert.Equal(t, []string{"CVE-2014-0160"}, cve)
	assert.Equal(t, 5.0, heartbleed.CVSSBaseScore())

	_, ok = items[0].Event.CVE()
	assert.False(t, ok)
	assert.NotNil(t, items[0].Event.XRef())
}

func TestItem_Fingerprint(t *testing.T) {
	rep := load(t, []byte(sampleReport))
	items, err := rep.Events(context.Background())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, it := range items {
		fp, err := it.Fingerprint()
		require.NoError(t, err)
		assert.Len(t, fp, 64)
		assert.False(t, seen[fp], "duplicate fingerprint")
		seen[fp] = true
	}

	again, err := load(t, []byte(sampleReport)).Events(context.Background())
	require.NoError(t, err)
	fp1, _ := items[1].Fingerprint()
	fp2, _ := again[1].Fingerprint()
	assert.Equal(t, fp1, fp2)
}
