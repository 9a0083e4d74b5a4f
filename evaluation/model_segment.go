package evaluation

// Condition is a single attribute comparison inside a segment. Values
// holds one or more reference values; the condition passes when any of
// them satisfies the operator against the entity's attribute.
type Condition struct {
	AttributeName string        `json:"attribute_name" validate:"required"`
	Operator      string        `json:"operator" validate:"oneof=is isNot contains notContains startsWith endsWith greaterThan lesserThan greaterThanEquals lesserThanEquals matchesRegex"`
	Values        []interface{} `json:"values" validate:"required,min=1"`
}

// ConditionGroup is a set of conditions that must all hold.
type ConditionGroup struct {
	Conditions []Condition `json:"conditions" validate:"required,min=1,dive"`
}

// Segment is a named, reusable predicate over entity attributes.
// Membership requires any one group to be fully satisfied (groups are
// OR-ed, conditions within a group are AND-ed).
type Segment struct {
	SegmentID   string           `json:"segment_id" validate:"required"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Rules       []ConditionGroup `json:"rules" validate:"required,min=1,dive"`
}
