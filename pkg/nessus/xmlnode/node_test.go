package xmlnode

import (
	"strings"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exploopio/nessus/pkg/nessus"
)

const heartbleed = `<ReportItem port="443" svc_name="https" protocol="tcp" severity="3" pluginID="73412" pluginName="OpenSSL Heartbeat Information Disclosure (Heartbleed)" pluginFamily="Misc.">
<cve>CVE-2014-0160</cve>
<bid>66690</bid>
<cvss_base_score>5.0</cvss_base_score>
<cvss_vector>CVSS2#AV:N/AC:L/Au:N/C:P/I:N/A:N</cvss_vector>
<description>The remote service is affected by an out-of-bounds read.</description>
<patch_publication_date>2014/04/07</patch_publication_date>
<plugin_output></plugin_output>
<risk_factor>Medium</risk_factor>
<see_also>http://www.openssl.org/news/secadv_20140407.txt</see_also>
<see_also>http://heartbleed.com/</see_also>
<solution>Upgrade to OpenSSL 1.0.1g or later.</solution>
<synopsis>The remote service is affected by an information disclosure vulnerability.</synopsis>
<xref>OSVDB:105465</xref>
<xref>CERT:720951</xref>
</ReportItem>`

func parseItem(t *testing.T, doc string) *Element {
	t.Helper()
	root, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	item := xmlquery.FindOne(root, "//ReportItem")
	require.NotNil(t, item)
	return Wrap(item)
}

func TestElement_Get(t *testing.T) {
	item := parseItem(t, heartbleed)

	n, ok := item.Get(nessus.SelPluginID)
	require.True(t, ok)
	assert.Equal(t, "73412", n.Text())

	_, ok = item.Get(nessus.Selector{Name: "missing", Attr: true})
	assert.False(t, ok)

	n, ok = item.Get(nessus.SelRiskFactor)
	require.True(t, ok)
	assert.Equal(t, "Medium", n.Text())

	n, ok = item.Get(nessus.SelPluginOutput)
	require.True(t, ok)
	assert.Equal(t, "", n.Text())

	_, ok = item.Get(nessus.SelCPE)
	assert.False(t, ok)
}

func TestElement_GetAll(t *testing.T) {
	item := parseItem(t, heartbleed)

	nodes := item.GetAll(nessus.SelSeeAlso)
	require.Len(t, nodes, 2)
	assert.Equal(t, "http://www.openssl.org/news/secadv_20140407.txt", nodes[0].Text())
	assert.Equal(t, "http://heartbleed.com/", nodes[1].Text())

	assert.Empty(t, item.GetAll(nessus.SelCPE))
	assert.Len(t, item.GetAll(nessus.SelPort), 1)
}

func TestElement_DrivesEvent(t *testing.T) {
	ev := nessus.NewEvent(parseItem(t, heartbleed))

	assert.Equal(t, "https (443/tcp)", ev.Port().String())

	high, err := ev.High()
	require.NoError(t, err)
	assert.True(t, high)

	id, err := ev.ID()
	require.NoError(t, err)
	assert.Equal(t, 73412, id)

	family, err := ev.Family()
	require.NoError(t, err)
	assert.Equal(t, "Misc.", family)

	out, ok := ev.Output()
	assert.True(t, ok)
	assert.Equal(t, "", out)

	cve, ok := ev.CVE()
	assert.True(t, ok)
	assert.Equal(t, []string{"CVE-2014-0160"}, cve)

	assert.Equal(t, []string{"OSVDB:105465", "CERT:720951"}, ev.XRef())
	assert.Empty(t, ev.CPE())
	assert.Equal(t, 5.0, ev.CVSSBaseScore())

	date, ok, err := ev.PatchPublicationDate()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2014, time.April, 7, 0, 0, 0, 0, time.UTC), date)
}
