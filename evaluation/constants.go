package evaluation

// Condition operators as they appear in configuration documents.
const (
	OperatorIs                = "is"
	OperatorIsNot             = "isNot"
	OperatorContains          = "contains"
	OperatorNotContains       = "notContains"
	OperatorStartsWith        = "startsWith"
	OperatorEndsWith          = "endsWith"
	OperatorGreaterThan       = "greaterThan"
	OperatorLesserThan        = "lesserThan"
	OperatorGreaterThanEquals = "greaterThanEquals"
	OperatorLesserThanEquals  = "lesserThanEquals"
	OperatorMatchesRegex      = "matchesRegex"
)

type ValueKind string

const (
	ValueKindBoolean ValueKind = "BOOLEAN"
	ValueKindString  ValueKind = "STRING"
	ValueKindNumeric ValueKind = "NUMERIC"
)

// DefaultSentinel is the literal a targeting rule carries in place of a
// value or rollout percentage to mean "use the feature/property level
// setting".
const DefaultSentinel = "$default"
