package api

import "time"

const (
	EventType_FeatureEvaluated  = "featureEvaluated"
	EventType_PropertyEvaluated = "propertyEvaluated"
)

// EvaluationEvent is emitted once per evaluation for external
// usage-reporting collaborators. RuleID is the matched targeting rule's
// identifier, or "default"/"disabled".
type EvaluationEvent struct {
	Id         string           `json:"id"`
	Type_      string           `json:"type"`
	Key        string           `json:"key"`
	EntityID   string           `json:"entityId"`
	RuleID     string           `json:"ruleId"`
	Reason     EvaluationReason `json:"reason"`
	Value      interface{}      `json:"value"`
	ClientDate time.Time        `json:"clientDate"`
}

// FlushPayload is one batch of evaluation events handed to the
// consumer's flush handler.
type FlushPayload struct {
	PayloadId string            `json:"payloadId"`
	Events    []EvaluationEvent `json:"events"`
}

type ClientEvent struct {
	EventType ClientEventType `json:"eventType"`
	EventData interface{}     `json:"eventData"`
	Status    string          `json:"status"`
	Error     error           `json:"error"`
}

type ClientEventType string

const (
	ClientEventType_Initialized                ClientEventType = "initialized"
	ClientEventType_Error                      ClientEventType = "error"
	ClientEventType_ConfigUpdated              ClientEventType = "configUpdated"
	ClientEventType_ConfigRejected             ClientEventType = "configRejected"
	ClientEventType_RealtimeUpdates            ClientEventType = "realtimeUpdates"
	ClientEventType_InternalSSEFailure         ClientEventType = "internalSSEFailure"
	ClientEventType_InternalNewConfigAvailable ClientEventType = "internalNewConfigAvailable"
	ClientEventType_InternalSSEConnected       ClientEventType = "internalSSEConnected"
)
