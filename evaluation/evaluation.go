package evaluation

import (
	"strconv"

	"github.com/configflow/go-client-sdk/api"
)

// Result carries the resolved value together with enough information
// for telemetry collaborators: the matched rule id, or the
// "default"/"disabled" tags when no targeting rule decided the value.
type Result struct {
	Value   interface{}
	Kind    ValueKind
	Reason  api.EvaluationReason
	RuleID  string
	Enabled bool
}

// EvaluateFeature resolves a feature value for the entity:
//
//  1. a globally disabled feature short-circuits to its disabled value;
//  2. targeting rules are walked in declared order, first match wins;
//     a matched rule whose rollout check fails falls through to the
//     next rule rather than ending the walk;
//  3. with no matching rule the feature-level rollout decides between
//     the enabled and disabled values.
//
// Evaluation is pure in-memory work against an immutable model and
// never fails on type grounds: value/type consistency was enforced when
// the model was built.
func (m *ConfigModel) EvaluateFeature(key string, entity api.Entity) (Result, error) {
	feature, err := m.GetFeature(key)
	if err != nil {
		return Result{}, err
	}

	if !feature.Enabled {
		return Result{
			Value:   feature.DisabledValue,
			Kind:    feature.Kind,
			Reason:  api.EvaluationReasonDisabled,
			RuleID:  api.RuleIDDisabled,
			Enabled: false,
		}, nil
	}

	if len(feature.SegmentRules) > 0 && len(entity.Attributes) > 0 {
		for _, rule := range feature.SegmentRules {
			if !m.ruleMatches(rule, entity) {
				continue
			}
			percentage := resolveRolloutPercentage(rule.RolloutPercentage, feature.RolloutPercentage)
			if !shouldRollout(percentage, entity.EntityID, feature.FeatureID) {
				// rollout miss falls through to the next rule
				continue
			}
			value := rule.Value
			if isDefaultSentinel(value) {
				value = feature.EnabledValue
			}
			return Result{
				Value:   value,
				Kind:    feature.Kind,
				Reason:  api.EvaluationReasonTargetingMatch,
				RuleID:  strconv.Itoa(rule.Order),
				Enabled: true,
			}, nil
		}
	}

	value := feature.DisabledValue
	if shouldRollout(feature.RolloutPercentage, entity.EntityID, feature.FeatureID) {
		value = feature.EnabledValue
	}
	return Result{
		Value:   value,
		Kind:    feature.Kind,
		Reason:  api.EvaluationReasonDefault,
		RuleID:  api.RuleIDDefault,
		Enabled: true,
	}, nil
}

// EvaluateProperty resolves a property value for the entity. Properties
// have no enabled/disabled gate: rule-level rollout still applies (a
// miss falls through), but the base value is served unconditionally when
// no rule decides.
func (m *ConfigModel) EvaluateProperty(key string, entity api.Entity) (Result, error) {
	property, err := m.GetProperty(key)
	if err != nil {
		return Result{}, err
	}

	if len(property.SegmentRules) > 0 && len(entity.Attributes) > 0 {
		for _, rule := range property.SegmentRules {
			if !m.ruleMatches(rule, entity) {
				continue
			}
			percentage := resolveRolloutPercentage(rule.RolloutPercentage, property.RolloutPercentage)
			if !shouldRollout(percentage, entity.EntityID, property.PropertyID) {
				continue
			}
			value := rule.Value
			if isDefaultSentinel(value) {
				value = property.Value
			}
			return Result{
				Value:  value,
				Kind:   property.Kind,
				Reason: api.EvaluationReasonTargetingMatch,
				RuleID: strconv.Itoa(rule.Order),
			}, nil
		}
	}

	return Result{
		Value:  property.Value,
		Kind:   property.Kind,
		Reason: api.EvaluationReasonDefault,
		RuleID: api.RuleIDDefault,
	}, nil
}
