package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		"name":    String("Acme"),
		"metrics": Map(map[string]Value{"employees": Number(50)}),
		"category": Map(map[string]Value{
			"sector": String("SaaS"),
		}),
		"tags": Strings("b2b"),
	}
}

func TestRecord_Lookup(t *testing.T) {
	rec := sampleRecord()

	tests := []struct {
		name  string
		path  string
		found bool
	}{
		{"top-level", "name", true},
		{"nested", "metrics.employees", true},
		{"missing top-level", "revenue", false},
		{"missing leaf", "metrics.revenue", false},
		{"intermediate not a map", "name.first", false},
		{"list is not traversable", "tags.0", false},
		{"empty path", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := rec.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
		})
	}

	v, ok := rec.Lookup("metrics.employees")
	require.True(t, ok)
	n, _ := v.AsNumber()
	assert.Equal(t, 50.0, n)
}

func TestRecord_Set(t *testing.T) {
	rec := NewRecord()
	rec.Set("geography.city", String("Bengaluru"))
	rec.Set("geography.country", String("India"))
	rec.Set("name", String("Acme"))

	assert.Equal(t, "Bengaluru", rec.StringAt("geography.city"))
	assert.Equal(t, "India", rec.StringAt("geography.country"))
	assert.Equal(t, "Acme", rec.StringAt("name"))
}

func TestRecord_SetDoesNotAliasNestedMaps(t *testing.T) {
	original := sampleRecord()
	clone := original.Clone()
	clone.Set("metrics.employees", Number(3))

	n, _ := original.NumberAt("metrics.employees")
	assert.Equal(t, 50.0, n)
}

func TestRecord_MergeSkipsCalculated(t *testing.T) {
	rec := Record{"name": String("Old")}
	rec.Merge(Record{
		"name":        String("New"),
		"revenue":     String("$10M"),
		CalculatedKey: Map(map[string]Value{"arr_numeric": Number(1)}),
	})

	assert.Equal(t, "New", rec.StringAt("name"))
	assert.Equal(t, "$10M", rec.StringAt("revenue"))
	assert.False(t, rec.Has(CalculatedKey))
}

func TestRecord_CalculatedNumber(t *testing.T) {
	rec := Record{CalculatedKey: Map(map[string]Value{"arr_numeric": Number(5_000_000)})}

	arr, ok := rec.CalculatedNumber("arr_numeric")
	assert.True(t, ok)
	assert.Equal(t, 5_000_000.0, arr)

	_, ok = rec.CalculatedNumber("burn_multiple")
	assert.False(t, ok)
}

func TestRecord_JSON(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Acme","metrics":{"employees":12}}`), &rec))

	n, ok := rec.NumberAt("metrics.employees")
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"metrics":{"employees":12},"name":"Acme"}`, string(data))
}

func TestRuleSet_AllOrder(t *testing.T) {
	rs := &RuleSet{
		GlobalRules:      []Rule{{ID: "g1"}, {ID: "g2"}},
		CriticalRedFlags: []Rule{{ID: "r1"}},
		PositiveSignals:  []Rule{{ID: "p1"}},
	}

	var ids []string
	for _, r := range rs.All() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"g1", "g2", "r1", "p1"}, ids)

	var nilSet *RuleSet
	assert.Nil(t, nilSet.All())
}
