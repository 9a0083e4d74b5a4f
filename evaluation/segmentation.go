package evaluation

import (
	"regexp"
	"strings"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/util"
)

// conditionMatches evaluates a single condition against the entity's
// attributes. A missing attribute never matches, for every operator
// including the negated ones; operator/type failures evaluate to false
// rather than erroring so a bad condition can never break the hot path.
func conditionMatches(condition *Condition, entity api.Entity) bool {
	attr, ok := entity.Attribute(condition.AttributeName)
	if !ok || attr == nil {
		return false
	}

	switch condition.Operator {
	case OperatorIs:
		return anyValueMatches(condition.Values, func(ref interface{}) bool {
			return checkEquals(attr, ref)
		})
	case OperatorIsNot:
		return attributeComparable(attr) && !anyValueMatches(condition.Values, func(ref interface{}) bool {
			return checkEquals(attr, ref)
		})
	case OperatorContains:
		return checkStringCondition(attr, condition.Values, strings.Contains, false)
	case OperatorNotContains:
		return checkStringCondition(attr, condition.Values, strings.Contains, true)
	case OperatorStartsWith:
		return checkStringCondition(attr, condition.Values, strings.HasPrefix, false)
	case OperatorEndsWith:
		return checkStringCondition(attr, condition.Values, strings.HasSuffix, false)
	case OperatorGreaterThan:
		return checkNumberCondition(attr, condition.Values, func(a, b float64) bool { return a > b })
	case OperatorLesserThan:
		return checkNumberCondition(attr, condition.Values, func(a, b float64) bool { return a < b })
	case OperatorGreaterThanEquals:
		return checkNumberCondition(attr, condition.Values, func(a, b float64) bool { return a >= b })
	case OperatorLesserThanEquals:
		return checkNumberCondition(attr, condition.Values, func(a, b float64) bool { return a <= b })
	case OperatorMatchesRegex:
		return checkRegexCondition(attr, condition.Values)
	default:
		util.Debugf("Unknown condition operator %q, evaluating to false", condition.Operator)
		return false
	}
}

func anyValueMatches(values []interface{}, match func(ref interface{}) bool) bool {
	for _, value := range values {
		if match(value) {
			return true
		}
	}
	return false
}

// checkEquals compares in the attribute's own type: booleans and numbers
// coerce the reference value before comparing, everything else compares
// the stringified forms.
func checkEquals(attr, ref interface{}) bool {
	switch a := attr.(type) {
	case bool:
		if b, ok := ref.(bool); ok {
			return a == b
		}
		if s, ok := api.AttributeString(ref); ok && (s == "true" || s == "false") {
			return a == (s == "true")
		}
		return false
	case float64, float32, int, int64:
		an, _ := api.AttributeNumber(attr)
		bn, ok := api.AttributeNumber(ref)
		return ok && an == bn
	default:
		as, aok := api.AttributeString(attr)
		bs, bok := api.AttributeString(ref)
		return aok && bok && as == bs
	}
}

func attributeComparable(attr interface{}) bool {
	_, ok := api.AttributeString(attr)
	return ok
}

// String operators require a string attribute; any other type fails
// closed. Negated variants invert the any-value match but still require
// the attribute to be present and string-typed.
func checkStringCondition(attr interface{}, values []interface{}, match func(s, ref string) bool, negate bool) bool {
	str, ok := attr.(string)
	if !ok {
		return false
	}
	matched := anyValueMatches(values, func(ref interface{}) bool {
		refStr, refOk := api.AttributeString(ref)
		return refOk && refStr != "" && match(str, refStr)
	})
	if negate {
		return !matched
	}
	return matched
}

func checkNumberCondition(attr interface{}, values []interface{}, compare func(a, b float64) bool) bool {
	num, ok := api.AttributeNumber(attr)
	if !ok {
		return false
	}
	return anyValueMatches(values, func(ref interface{}) bool {
		refNum, refOk := api.AttributeNumber(ref)
		return refOk && compare(num, refNum)
	})
}

// The regex operator compiles the reference value as a pattern against
// the stringified attribute, failing closed on compile errors.
func checkRegexCondition(attr interface{}, values []interface{}) bool {
	str, ok := api.AttributeString(attr)
	if !ok {
		return false
	}
	return anyValueMatches(values, func(ref interface{}) bool {
		pattern, refOk := api.AttributeString(ref)
		if !refOk {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			util.Debugf("Invalid regex pattern %q in condition, evaluating to false: %s", pattern, err)
			return false
		}
		return re.MatchString(str)
	})
}

// SegmentMatches reports whether the entity belongs to the segment:
// condition groups are OR-ed, conditions within a group are AND-ed.
// Short-circuits on the first failing condition within a group and the
// first fully satisfied group.
func SegmentMatches(segment *Segment, entity api.Entity) bool {
	for _, group := range segment.Rules {
		if conditionGroupMatches(group, entity) {
			return true
		}
	}
	return false
}

func conditionGroupMatches(group ConditionGroup, entity api.Entity) bool {
	for _, condition := range group.Conditions {
		if !conditionMatches(&condition, entity) {
			return false
		}
	}
	return true
}

// ruleMatches applies the same OR-of-AND combinator one level up: a
// targeting rule's groups reference segments rather than raw conditions.
// A group matches when the entity belongs to every referenced segment.
// Validation guarantees every referenced segment exists in the model.
func (m *ConfigModel) ruleMatches(rule *TargetingRule, entity api.Entity) bool {
	for _, group := range rule.Rules {
		if m.segmentGroupMatches(group, entity) {
			return true
		}
	}
	return false
}

func (m *ConfigModel) segmentGroupMatches(group SegmentGroup, entity api.Entity) bool {
	for _, segmentID := range group.Segments {
		segment, ok := m.segments[segmentID]
		if !ok || !SegmentMatches(segment, entity) {
			return false
		}
	}
	return true
}
