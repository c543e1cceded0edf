package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_StartRequest(t *testing.T) {
	c := NewCollector("test")

	done := c.StartRequest("GET", "tobaccos")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiInFlight))

	done(http.StatusOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.apiInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues("GET", "tobaccos", "200")))

	c.StartRequest("POST", "mixes")(0)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues("POST", "mixes", "0")))
}

func TestCollector_StoreMetrics(t *testing.T) {
	c := NewCollector("test")

	c.RecordMutation("add_tobacco")
	c.RecordMutation("add_tobacco")
	c.SetContainerSize("tobaccos", 3)
	c.RecordTabSelection("mix")
	c.RecordThrottleWait("tobaccos", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.storeMutations.WithLabelValues("add_tobacco")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.containerSize.WithLabelValues("tobaccos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tabSelections.WithLabelValues("mix")))
}

func TestCollector_NilIsNoOp(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.StartRequest("GET", "user")(200)
		c.RecordMutation("set_history")
		c.SetContainerSize("history", 1)
		c.RecordTabSelection("home")
		c.RecordThrottleWait("user", time.Second)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("mixapp")
	c.RecordMutation("update_mix")

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mixapp_store_mutations_total{op="update_mix"} 1`)
}
