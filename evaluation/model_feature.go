package evaluation

// SegmentGroup references one or more segments that an entity must all
// belong to. A targeting rule matches when any of its groups matches.
type SegmentGroup struct {
	Segments []string `json:"segments" validate:"required,min=1"`
}

// TargetingRule binds segment membership to a returned value. Rules are
// evaluated in ascending Order; the first matching rule that also passes
// its rollout check wins. Value and RolloutPercentage may carry the
// "$default" sentinel, meaning the owning feature/property level setting
// applies. RolloutPercentage is nil when the rule declares none.
type TargetingRule struct {
	Order             int            `json:"order"`
	Rules             []SegmentGroup `json:"rules" validate:"required,min=1,dive"`
	Value             interface{}    `json:"value"`
	RolloutPercentage interface{}    `json:"rollout_percentage,omitempty"`
}

// Feature is a boolean-gated configuration entry. When Enabled is false
// it always resolves to DisabledValue, skipping all targeting.
type Feature struct {
	FeatureID         string           `json:"feature_id" validate:"required"`
	Name              string           `json:"name"`
	Kind              ValueKind        `json:"type" validate:"oneof=BOOLEAN STRING NUMERIC"`
	Format            string           `json:"format,omitempty"`
	Enabled           bool             `json:"enabled"`
	EnabledValue      interface{}      `json:"enabled_value"`
	DisabledValue     interface{}      `json:"disabled_value"`
	RolloutPercentage int              `json:"rollout_percentage" validate:"min=0,max=100"`
	SegmentRules      []*TargetingRule `json:"segment_rules" validate:"dive"`
	Collections       []string         `json:"collections,omitempty"`
}

// Property is a non-boolean configuration entry without an
// enabled/disabled gate. Its RolloutPercentage only serves as the
// fallback for targeting rules carrying the "$default" rollout sentinel;
// the base value itself is not rollout-gated because a property has no
// disabled equivalent to fall back to.
type Property struct {
	PropertyID        string           `json:"property_id" validate:"required"`
	Name              string           `json:"name"`
	Kind              ValueKind        `json:"type" validate:"oneof=BOOLEAN STRING NUMERIC"`
	Format            string           `json:"format,omitempty"`
	Value             interface{}      `json:"value"`
	RolloutPercentage int              `json:"rollout_percentage" validate:"min=0,max=100"`
	SegmentRules      []*TargetingRule `json:"segment_rules" validate:"dive"`
	Collections       []string         `json:"collections,omitempty"`
}

func isDefaultSentinel(v interface{}) bool {
	s, ok := v.(string)
	return ok && s == DefaultSentinel
}

// resolveRolloutPercentage resolves a rule-level rollout literal against
// the feature/property default. Validation guarantees the literal is a
// number in [0,100] or the "$default" sentinel.
func resolveRolloutPercentage(ruleRollout interface{}, fallback int) int {
	switch v := ruleRollout.(type) {
	case nil:
		return fallback
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func valueMatchesKind(v interface{}, kind ValueKind) bool {
	switch kind {
	case ValueKindBoolean:
		_, ok := v.(bool)
		return ok
	case ValueKindString:
		_, ok := v.(string)
		return ok
	case ValueKindNumeric:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	}
	return false
}
