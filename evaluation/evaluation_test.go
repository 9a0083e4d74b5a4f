package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/configflow/go-client-sdk/api"
)

func productionModel(t *testing.T) *ConfigModel {
	t.Helper()
	model, err := NewConfigModel([]byte(testConfigDocument), "production", "web", "")
	require.NoError(t, err)
	return model
}

func TestEvaluateFeature_TargetingMatch(t *testing.T) {
	model := productionModel(t)

	result, err := model.EvaluateFeature("dark-mode", entityWith(map[string]interface{}{"plan": "beta"}))
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)
	assert.Equal(t, api.EvaluationReasonTargetingMatch, result.Reason)
	assert.Equal(t, "1", result.RuleID)
	assert.Equal(t, ValueKindBoolean, result.Kind)
	assert.True(t, result.Enabled)
}

func TestEvaluateFeature_NoRuleMatch(t *testing.T) {
	model := productionModel(t)

	// plan=standard misses the beta-users rule; dark-mode's own rollout is 0
	// so the default path lands on the disabled value
	result, err := model.EvaluateFeature("dark-mode", entityWith(map[string]interface{}{"plan": "standard"}))
	require.NoError(t, err)
	assert.Equal(t, false, result.Value)
	assert.Equal(t, api.EvaluationReasonDefault, result.Reason)
	assert.Equal(t, api.RuleIDDefault, result.RuleID)
}

func TestEvaluateFeature_EmptyAttributesSkipsRules(t *testing.T) {
	model := productionModel(t)

	result, err := model.EvaluateFeature("dark-mode", api.NewEntity("e1"))
	require.NoError(t, err)
	assert.Equal(t, false, result.Value)
	assert.Equal(t, api.RuleIDDefault, result.RuleID)
}

func TestEvaluateFeature_NotFound(t *testing.T) {
	model := productionModel(t)

	_, err := model.EvaluateFeature("no-such-feature", api.NewEntity("e1"))
	assert.ErrorIs(t, err, ErrFeatureNotFound)
}

func TestEvaluateFeature_Disabled(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "STRING", "enabled": false,
				"enabled_value": "on", "disabled_value": "off",
				"rollout_percentage": 100,
				"segment_rules": [{
					"order": 1,
					"rules": [{"segments": ["s1"]}],
					"value": "rule-value",
					"rollout_percentage": 100
				}]
			}],
			"properties": []
		}],
		"segments": [{
			"segment_id": "s1", "name": "S1",
			"rules": [{"conditions": [{"attribute_name": "plan", "operator": "is", "values": ["beta"]}]}]
		}]
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	// a disabled feature short-circuits before the rule walk, even for a
	// matching entity
	result, err := model.EvaluateFeature("f1", entityWith(map[string]interface{}{"plan": "beta"}))
	require.NoError(t, err)
	assert.Equal(t, "off", result.Value)
	assert.Equal(t, api.EvaluationReasonDisabled, result.Reason)
	assert.Equal(t, api.RuleIDDisabled, result.RuleID)
	assert.False(t, result.Enabled)
}

func TestEvaluateFeature_RuleOrder(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "STRING", "enabled": true,
				"enabled_value": "default-on", "disabled_value": "off",
				"rollout_percentage": 100,
				"segment_rules": [
					{"order": 2, "rules": [{"segments": ["everyone"]}], "value": "second", "rollout_percentage": 100},
					{"order": 1, "rules": [{"segments": ["beta"]}], "value": "first", "rollout_percentage": 100}
				]
			}],
			"properties": []
		}],
		"segments": [
			{"segment_id": "beta", "name": "Beta",
			 "rules": [{"conditions": [{"attribute_name": "plan", "operator": "is", "values": ["beta"]}]}]},
			{"segment_id": "everyone", "name": "Everyone",
			 "rules": [{"conditions": [{"attribute_name": "plan", "operator": "isNot", "values": ["nobody"]}]}]}
		]
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	// both rules match a beta entity; the lower order wins
	result, err := model.EvaluateFeature("f1", entityWith(map[string]interface{}{"plan": "beta"}))
	require.NoError(t, err)
	assert.Equal(t, "first", result.Value)
	assert.Equal(t, "1", result.RuleID)

	// only the catch-all matches a standard entity
	result, err = model.EvaluateFeature("f1", entityWith(map[string]interface{}{"plan": "standard"}))
	require.NoError(t, err)
	assert.Equal(t, "second", result.Value)
	assert.Equal(t, "2", result.RuleID)
}

func TestEvaluateFeature_RuleRollout(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "STRING", "enabled": true,
				"enabled_value": "default-on", "disabled_value": "off",
				"rollout_percentage": 100,
				"segment_rules": [{
					"order": 1,
					"rules": [{"segments": ["everyone"]}],
					"value": "rolled-out",
					"rollout_percentage": 50
				}]
			}],
			"properties": []
		}],
		"segments": [{
			"segment_id": "everyone", "name": "Everyone",
			"rules": [{"conditions": [{"attribute_name": "plan", "operator": "isNot", "values": ["nobody"]}]}]
		}]
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	attrs := map[string]interface{}{"plan": "beta"}

	// a2 buckets to 29 for f1, inside the 50% rollout
	inside := api.Entity{EntityID: "a2", Attributes: attrs}
	result, err := model.EvaluateFeature("f1", inside)
	require.NoError(t, err)
	assert.Equal(t, "rolled-out", result.Value)
	assert.Equal(t, api.EvaluationReasonTargetingMatch, result.Reason)

	// a1 buckets to 68, outside the rollout; with no further rule the
	// evaluation falls back to the feature default
	outside := api.Entity{EntityID: "a1", Attributes: attrs}
	result, err = model.EvaluateFeature("f1", outside)
	require.NoError(t, err)
	assert.Equal(t, "default-on", result.Value)
	assert.Equal(t, api.EvaluationReasonDefault, result.Reason)
	assert.Equal(t, api.RuleIDDefault, result.RuleID)
}

// An entity outside a matched rule's rollout keeps walking the remaining
// rules rather than stopping at the miss.
func TestEvaluateFeature_RolloutMissFallsThroughToNextRule(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "STRING", "enabled": true,
				"enabled_value": "default-on", "disabled_value": "off",
				"rollout_percentage": 100,
				"segment_rules": [
					{"order": 1, "rules": [{"segments": ["everyone"]}], "value": "narrow", "rollout_percentage": 50},
					{"order": 2, "rules": [{"segments": ["everyone"]}], "value": "wide", "rollout_percentage": 100}
				]
			}],
			"properties": []
		}],
		"segments": [{
			"segment_id": "everyone", "name": "Everyone",
			"rules": [{"conditions": [{"attribute_name": "plan", "operator": "isNot", "values": ["nobody"]}]}]
		}]
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	// a1 (bucket 68) misses rule 1's 50% rollout and lands on rule 2
	result, err := model.EvaluateFeature("f1", api.Entity{
		EntityID:   "a1",
		Attributes: map[string]interface{}{"plan": "beta"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wide", result.Value)
	assert.Equal(t, "2", result.RuleID)
}

func TestEvaluateFeature_DefaultSentinels(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "STRING", "enabled": true,
				"enabled_value": "feature-value", "disabled_value": "off",
				"rollout_percentage": 50,
				"segment_rules": [{
					"order": 1,
					"rules": [{"segments": ["everyone"]}],
					"value": "$default",
					"rollout_percentage": "$default"
				}]
			}],
			"properties": []
		}],
		"segments": [{
			"segment_id": "everyone", "name": "Everyone",
			"rules": [{"conditions": [{"attribute_name": "plan", "operator": "isNot", "values": ["nobody"]}]}]
		}]
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	attrs := map[string]interface{}{"plan": "beta"}

	// "$default" rollout inherits the feature's 50%; a2 (bucket 29) is
	// inside it and "$default" value resolves to the enabled value
	result, err := model.EvaluateFeature("f1", api.Entity{EntityID: "a2", Attributes: attrs})
	require.NoError(t, err)
	assert.Equal(t, "feature-value", result.Value)
	assert.Equal(t, api.EvaluationReasonTargetingMatch, result.Reason)
	assert.Equal(t, "1", result.RuleID)

	// a1 (bucket 68) misses the inherited 50% on the rule, then misses the
	// feature rollout too and gets the disabled value
	result, err = model.EvaluateFeature("f1", api.Entity{EntityID: "a1", Attributes: attrs})
	require.NoError(t, err)
	assert.Equal(t, "off", result.Value)
	assert.Equal(t, api.EvaluationReasonDefault, result.Reason)
}

func TestEvaluateFeature_FeatureLevelRollout(t *testing.T) {
	doc := `{
		"sequence_number": 1,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "f1", "type": "BOOLEAN", "enabled": true,
				"enabled_value": true, "disabled_value": false,
				"rollout_percentage": 50, "segment_rules": []
			}],
			"properties": []
		}],
		"segments": []
	}`
	model, err := NewConfigModel([]byte(doc), "production", "", "")
	require.NoError(t, err)

	result, err := model.EvaluateFeature("f1", api.NewEntity("a2"))
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)

	result, err = model.EvaluateFeature("f1", api.NewEntity("a1"))
	require.NoError(t, err)
	assert.Equal(t, false, result.Value)
}

func TestEvaluateProperty_TargetingMatch(t *testing.T) {
	model := productionModel(t)

	result, err := model.EvaluateProperty("request-limit", entityWith(map[string]interface{}{"plan": "beta"}))
	require.NoError(t, err)
	assert.Equal(t, float64(100), result.Value)
	assert.Equal(t, api.EvaluationReasonTargetingMatch, result.Reason)
	assert.Equal(t, "1", result.RuleID)
	assert.Equal(t, ValueKindNumeric, result.Kind)
}

func TestEvaluateProperty_BaseValue(t *testing.T) {
	model := productionModel(t)

	// no rule match: properties always resolve to their base value, with
	// no rollout gate on the default path
	result, err := model.EvaluateProperty("request-limit", entityWith(map[string]interface{}{"plan": "standard"}))
	require.NoError(t, err)
	assert.Equal(t, float64(25), result.Value)
	assert.Equal(t, api.EvaluationReasonDefault, result.Reason)
	assert.Equal(t, api.RuleIDDefault, result.RuleID)
}

func TestEvaluateProperty_NotFound(t *testing.T) {
	model := productionModel(t)

	_, err := model.EvaluateProperty("no-such-property", api.NewEntity("e1"))
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}
