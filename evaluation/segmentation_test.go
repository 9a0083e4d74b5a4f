package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/configflow/go-client-sdk/api"
)

func entityWith(attrs map[string]interface{}) api.Entity {
	return api.Entity{EntityID: "e1", Attributes: attrs}
}

func singleCondition(attribute, operator string, values ...interface{}) *Condition {
	return &Condition{AttributeName: attribute, Operator: operator, Values: values}
}

func TestConditionMatches_Is(t *testing.T) {
	entity := entityWith(map[string]interface{}{
		"plan":    "beta",
		"age":     float64(42),
		"premium": true,
	})

	assert.True(t, conditionMatches(singleCondition("plan", OperatorIs, "beta"), entity))
	assert.False(t, conditionMatches(singleCondition("plan", OperatorIs, "standard"), entity))

	// any listed value may satisfy the operator
	assert.True(t, conditionMatches(singleCondition("plan", OperatorIs, "standard", "beta"), entity))

	// typed comparisons: numbers and booleans coerce the reference value
	assert.True(t, conditionMatches(singleCondition("age", OperatorIs, "42"), entity))
	assert.True(t, conditionMatches(singleCondition("age", OperatorIs, float64(42)), entity))
	assert.False(t, conditionMatches(singleCondition("age", OperatorIs, "43"), entity))
	assert.True(t, conditionMatches(singleCondition("premium", OperatorIs, "true"), entity))
	assert.False(t, conditionMatches(singleCondition("premium", OperatorIs, "false"), entity))
	assert.False(t, conditionMatches(singleCondition("premium", OperatorIs, "yes"), entity))
}

func TestConditionMatches_IsNot(t *testing.T) {
	entity := entityWith(map[string]interface{}{"plan": "beta"})

	assert.True(t, conditionMatches(singleCondition("plan", OperatorIsNot, "standard"), entity))
	assert.False(t, conditionMatches(singleCondition("plan", OperatorIsNot, "beta"), entity))
	assert.False(t, conditionMatches(singleCondition("plan", OperatorIsNot, "standard", "beta"), entity))
}

func TestConditionMatches_StringOperators(t *testing.T) {
	entity := entityWith(map[string]interface{}{"email": "dev@example.com"})

	assert.True(t, conditionMatches(singleCondition("email", OperatorContains, "@example"), entity))
	assert.False(t, conditionMatches(singleCondition("email", OperatorContains, "@other"), entity))
	assert.True(t, conditionMatches(singleCondition("email", OperatorNotContains, "@other"), entity))
	assert.False(t, conditionMatches(singleCondition("email", OperatorNotContains, "@example"), entity))
	assert.True(t, conditionMatches(singleCondition("email", OperatorStartsWith, "dev@"), entity))
	assert.False(t, conditionMatches(singleCondition("email", OperatorStartsWith, "admin@"), entity))
	assert.True(t, conditionMatches(singleCondition("email", OperatorEndsWith, ".com"), entity))
	assert.False(t, conditionMatches(singleCondition("email", OperatorEndsWith, ".org"), entity))
}

func TestConditionMatches_StringOperatorsRequireStringAttribute(t *testing.T) {
	entity := entityWith(map[string]interface{}{"age": float64(42)})

	// operator/type failures evaluate to false, including the negated form
	assert.False(t, conditionMatches(singleCondition("age", OperatorContains, "4"), entity))
	assert.False(t, conditionMatches(singleCondition("age", OperatorNotContains, "4"), entity))
	assert.False(t, conditionMatches(singleCondition("age", OperatorStartsWith, "4"), entity))
}

func TestConditionMatches_NumericOperators(t *testing.T) {
	entity := entityWith(map[string]interface{}{"age": float64(42), "height": "1.84"})

	assert.True(t, conditionMatches(singleCondition("age", OperatorGreaterThan, float64(41)), entity))
	assert.False(t, conditionMatches(singleCondition("age", OperatorGreaterThan, float64(42)), entity))
	assert.True(t, conditionMatches(singleCondition("age", OperatorGreaterThanEquals, float64(42)), entity))
	assert.True(t, conditionMatches(singleCondition("age", OperatorLesserThan, float64(43)), entity))
	assert.False(t, conditionMatches(singleCondition("age", OperatorLesserThan, float64(42)), entity))
	assert.True(t, conditionMatches(singleCondition("age", OperatorLesserThanEquals, float64(42)), entity))

	// string reference values are parsed as floats
	assert.True(t, conditionMatches(singleCondition("age", OperatorGreaterThan, "41.5"), entity))
	// string attributes coerce too
	assert.True(t, conditionMatches(singleCondition("height", OperatorGreaterThan, "1.80"), entity))
	// non-numeric sides fail closed
	assert.False(t, conditionMatches(singleCondition("age", OperatorGreaterThan, "tall"), entity))
}

func TestConditionMatches_Regex(t *testing.T) {
	entity := entityWith(map[string]interface{}{"email": "dev@example.com"})

	assert.True(t, conditionMatches(singleCondition("email", OperatorMatchesRegex, `^[a-z]+@example\.com$`), entity))
	assert.False(t, conditionMatches(singleCondition("email", OperatorMatchesRegex, `^[0-9]+$`), entity))
	// invalid pattern fails closed
	assert.False(t, conditionMatches(singleCondition("email", OperatorMatchesRegex, `([`), entity))
}

// A missing attribute never matches, for every operator including the
// negated ones.
func TestConditionMatches_MissingAttribute(t *testing.T) {
	entity := entityWith(map[string]interface{}{"other": "value"})

	operators := []string{
		OperatorIs, OperatorIsNot, OperatorContains, OperatorNotContains,
		OperatorStartsWith, OperatorEndsWith, OperatorGreaterThan,
		OperatorLesserThan, OperatorGreaterThanEquals,
		OperatorLesserThanEquals, OperatorMatchesRegex,
	}
	for _, operator := range operators {
		assert.False(t, conditionMatches(singleCondition("missing", operator, "anything"), entity),
			"operator %s must not match a missing attribute", operator)
	}
}

func TestConditionMatches_UnknownOperator(t *testing.T) {
	entity := entityWith(map[string]interface{}{"plan": "beta"})
	assert.False(t, conditionMatches(singleCondition("plan", "someNewOperator", "beta"), entity))
}

func TestSegmentMatches_GroupsAreORedConditionsAreANDed(t *testing.T) {
	segment := &Segment{
		SegmentID: "power-users",
		Rules: []ConditionGroup{
			{Conditions: []Condition{
				{AttributeName: "plan", Operator: OperatorIs, Values: []interface{}{"beta"}},
				{AttributeName: "age", Operator: OperatorGreaterThan, Values: []interface{}{float64(18)}},
			}},
			{Conditions: []Condition{
				{AttributeName: "vip", Operator: OperatorIs, Values: []interface{}{true}},
			}},
		},
	}

	// first group fully satisfied
	assert.True(t, SegmentMatches(segment, entityWith(map[string]interface{}{
		"plan": "beta", "age": float64(30),
	})))
	// first group half satisfied, second group satisfied
	assert.True(t, SegmentMatches(segment, entityWith(map[string]interface{}{
		"plan": "beta", "vip": true,
	})))
	// no group satisfied
	assert.False(t, SegmentMatches(segment, entityWith(map[string]interface{}{
		"plan": "beta", "age": float64(10),
	})))
}

func TestRuleMatches_SegmentGroupCombinator(t *testing.T) {
	model := &ConfigModel{
		segments: map[string]*Segment{
			"beta-users": {
				SegmentID: "beta-users",
				Rules: []ConditionGroup{{Conditions: []Condition{
					{AttributeName: "plan", Operator: OperatorIs, Values: []interface{}{"beta"}},
				}}},
			},
			"adults": {
				SegmentID: "adults",
				Rules: []ConditionGroup{{Conditions: []Condition{
					{AttributeName: "age", Operator: OperatorGreaterThanEquals, Values: []interface{}{float64(18)}},
				}}},
			},
		},
	}

	// both segments in one group: AND
	rule := &TargetingRule{Rules: []SegmentGroup{{Segments: []string{"beta-users", "adults"}}}}
	assert.True(t, model.ruleMatches(rule, entityWith(map[string]interface{}{"plan": "beta", "age": float64(21)})))
	assert.False(t, model.ruleMatches(rule, entityWith(map[string]interface{}{"plan": "beta", "age": float64(12)})))

	// two groups: OR
	rule = &TargetingRule{Rules: []SegmentGroup{
		{Segments: []string{"beta-users"}},
		{Segments: []string{"adults"}},
	}}
	assert.True(t, model.ruleMatches(rule, entityWith(map[string]interface{}{"age": float64(21)})))
	assert.True(t, model.ruleMatches(rule, entityWith(map[string]interface{}{"plan": "beta"})))
	assert.False(t, model.ruleMatches(rule, entityWith(map[string]interface{}{"plan": "standard", "age": float64(12)})))
}
