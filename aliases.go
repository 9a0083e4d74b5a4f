package appconfig

import (
	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/evaluation"
	"github.com/configflow/go-client-sdk/util"
)

type Entity = api.Entity
type EvaluationEvent = api.EvaluationEvent
type FlushPayload = api.FlushPayload
type ClientEvent = api.ClientEvent
type ClientEventType = api.ClientEventType
type EvaluationReason = api.EvaluationReason
type Result = evaluation.Result
type ConfigModel = evaluation.ConfigModel
type ConfigDocument = evaluation.ConfigDocument
type Feature = evaluation.Feature
type Property = evaluation.Property
type Segment = evaluation.Segment
type TargetingRule = evaluation.TargetingRule
type Condition = evaluation.Condition
type ValueKind = evaluation.ValueKind
type Logger = util.Logger
type DiscardLogger = util.DiscardLogger

var ErrFeatureNotFound = evaluation.ErrFeatureNotFound
var ErrPropertyNotFound = evaluation.ErrPropertyNotFound
var ErrNotInitialized = evaluation.ErrNotInitialized
var ErrStaleSequence = evaluation.ErrStaleSequence
var ErrTypeMismatch = evaluation.ErrTypeMismatch

func SetLogger(log Logger) { util.SetLogger(log) }

func NewEntity(entityID string) Entity { return api.NewEntity(entityID) }
