package monitor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignerMetrics 定义签名会话的监控指标
type SignerMetrics struct {
	ApduTotal       *prometheus.CounterVec
	ChunkTotal      *prometheus.CounterVec
	SignaturesTotal *prometheus.CounterVec
	ApprovalsTotal  *prometheus.CounterVec
	TxBytes         prometheus.Histogram
}

// Signer 为 nil 时所有记录方法都是空操作
var Signer *SignerMetrics

var signerOnce sync.Once

// InitSignerMetrics 初始化签名指标，可重复调用
func InitSignerMetrics() {
	signerOnce.Do(func() {
		Signer = &SignerMetrics{
			ApduTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_apdu_total",
				Help: "APDU commands processed, by instruction and status word.",
			}, []string{"ins", "sw"}),
			ChunkTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_tx_chunk_total",
				Help: "Transaction chunks fed to the parser, by outcome.",
			}, []string{"outcome"}),
			SignaturesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_signatures_total",
				Help: "Signatures produced, by kind.",
			}, []string{"kind"}),
			ApprovalsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_approvals_total",
				Help: "Approval prompts, by kind and result.",
			}, []string{"kind", "result"}),
			TxBytes: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "signer_tx_bytes",
				Help:    "Size of fully parsed transactions.",
				Buckets: prometheus.ExponentialBuckets(64, 2, 8),
			}),
		}
	})
}

func (m *SignerMetrics) Apdu(ins, sw string) {
	if m == nil {
		return
	}
	m.ApduTotal.WithLabelValues(ins, sw).Inc()
}

func (m *SignerMetrics) Chunk(outcome string) {
	if m == nil {
		return
	}
	m.ChunkTotal.WithLabelValues(outcome).Inc()
}

func (m *SignerMetrics) Signature(kind string) {
	if m == nil {
		return
	}
	m.SignaturesTotal.WithLabelValues(kind).Inc()
}

func (m *SignerMetrics) Approval(kind string, approved bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if approved {
		result = "approved"
	}
	m.ApprovalsTotal.WithLabelValues(kind, result).Inc()
}

func (m *SignerMetrics) TxSize(n int) {
	if m == nil {
		return
	}
	m.TxBytes.Observe(float64(n))
}
