// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistration(result string)
	RecordLogin(result string)
	RecordListingCreated()
	RecordListingDeleted()
	RecordListingRejection(reason string)
	RecordAuthorizationDenial(reason string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	listingCreated prometheus.Counter
	listingDeleted prometheus.Counter
	rejections     *prometheus.CounterVec
	denials        *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autobazar_registrations_total",
			Help: "ユーザー登録の試行数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autobazar_logins_total",
			Help: "ログインの試行数（結果別）",
		}, []string{"result"}),
		listingCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autobazar_listings_created_total",
			Help: "作成された掲載の合計数",
		}),
		listingDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autobazar_listings_deleted_total",
			Help: "削除された掲載の合計数",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autobazar_listing_rejections_total",
			Help: "入力検証で拒否された掲載の数（理由別）",
		}, []string{"reason"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autobazar_authorization_denials_total",
			Help: "所有者チェックで拒否された操作の数（理由別）",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autobazar_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autobazar_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.listingCreated,
		c.listingDeleted,
		c.rejections,
		c.denials,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRegistration はユーザー登録の結果を記録する。
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin はログインの結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordListingCreated は掲載の作成を記録する。
func (c *Collector) RecordListingCreated() {
	c.listingCreated.Inc()
}

// RecordListingDeleted は掲載の削除を記録する。
func (c *Collector) RecordListingDeleted() {
	c.listingDeleted.Inc()
}

// RecordListingRejection は掲載の入力検証エラーを記録する。
func (c *Collector) RecordListingRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

// RecordAuthorizationDenial は所有者チェックによる拒否を記録する。
func (c *Collector) RecordAuthorizationDenial(reason string) {
	c.denials.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordRegistration(string) {}
func (Nop) RecordLogin(string) {}
func (Nop) RecordListingCreated() {}
func (Nop) RecordListingDeleted() {}
func (Nop) RecordListingRejection(string) {}
func (Nop) RecordAuthorizationDenial(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
