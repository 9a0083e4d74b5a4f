package api

type EvaluationReason string

const (
	EvaluationReasonTargetingMatch EvaluationReason = "TARGETING_MATCH"
	EvaluationReasonDefault        EvaluationReason = "DEFAULT"
	EvaluationReasonDisabled       EvaluationReason = "DISABLED"
	EvaluationReasonError          EvaluationReason = "ERROR"
)

// RuleIDDefault and RuleIDDisabled are the result tags used in place of
// a matched rule identifier when no targeting rule decided the value.
const (
	RuleIDDefault  = "default"
	RuleIDDisabled = "disabled"
)
