package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockProvider para verificar chamadas
type MockProvider struct {
	LastCallType string
	LastName     string
	LastValue    float64
	LastTags     []string
}

func (m *MockProvider) record(kind, name string, val float64, tags []string) error {
	m.LastCallType = kind
	m.LastName = name
	m.LastValue = val
	m.LastTags = tags
	return nil
}

func (m *MockProvider) Count(name string, val float64, tags []string) error {
	return m.record("count", name, val, tags)
}
func (m *MockProvider) Gauge(name string, val float64, tags []string) error {
	return m.record("gauge", name, val, tags)
}
func (m *MockProvider) Histogram(name string, val float64, tags []string) error {
	return m.record("histogram", name, val, tags)
}

func TestProcessor_Record(t *testing.T) {
	provider := &MockProvider{}
	processor := NewProcessor(provider, "service:dynexpr")

	tests := []struct {
		name     string
		def      MetricDefinition
		value    float64
		tags     []string
		wantType string
		wantTags []string
	}{
		{
			name:     "count",
			def:      RequestCount,
			value:    1,
			tags:     []string{"operation:get"},
			wantType: "count",
			wantTags: []string{"service:dynexpr", "operation:get"},
		},
		{
			name:     "histogram",
			def:      RequestLatency,
			value:    12,
			wantType: "histogram",
			wantTags: []string{"service:dynexpr"},
		},
		{
			name:     "gauge",
			def:      MetricDefinition{Name: "dynexpr.scope.size", Type: TypeGauge},
			value:    3,
			wantType: "gauge",
			wantTags: []string{"service:dynexpr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := processor.Record(tt.def, tt.value, tt.tags...)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantType, provider.LastCallType)
			assert.Equal(t, tt.def.Name, provider.LastName)
			assert.Equal(t, tt.value, provider.LastValue)
			assert.Equal(t, tt.wantTags, provider.LastTags)
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		err := processor.Record(MetricDefinition{Name: "x", Type: "summary"}, 1)
		assert.Error(t, err)
	})

	t.Run("nil provider discards", func(t *testing.T) {
		assert.NoError(t, NewProcessor(nil).Record(RequestCount, 1))
	})
}
