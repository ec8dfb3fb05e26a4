package metrics

import (
	"fmt"
)

// Métricas emitidas pelo dyndb.
var (
	RequestCount   = MetricDefinition{Name: "dynexpr.request.count", Type: TypeCount}
	RequestLatency = MetricDefinition{Name: "dynexpr.request.latency_ms", Type: TypeHistogram}
	QueryPages     = MetricDefinition{Name: "dynexpr.query.pages", Type: TypeHistogram}
)

// Processor envia métricas pelo tipo da definição, acrescentando tags fixas.
type Processor struct {
	provider Provider
	tags     []string
}

// NewProcessor cria um processador. provider nil descarta tudo.
func NewProcessor(provider Provider, tags ...string) *Processor {
	if provider == nil {
		provider = Noop{}
	}
	return &Processor{provider: provider, tags: tags}
}

// Record envia value para a métrica def.
func (p *Processor) Record(def MetricDefinition, value float64, tags ...string) error {
	finalTags := make([]string, 0, len(p.tags)+len(tags))
	finalTags = append(finalTags, p.tags...)
	finalTags = append(finalTags, tags...)

	switch def.Type {
	case TypeCount:
		return p.provider.Count(def.Name, value, finalTags)
	case TypeGauge:
		return p.provider.Gauge(def.Name, value, finalTags)
	case TypeHistogram:
		return p.provider.Histogram(def.Name, value, finalTags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}
