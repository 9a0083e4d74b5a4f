package appconfig

import (
	"errors"
	"fmt"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/evaluation"
	"github.com/configflow/go-client-sdk/util"
)

// Client is the host application's handle on the SDK. Configure it once,
// then call the evaluation methods from any goroutine: evaluations only
// read the current immutable snapshot and never touch the network.
type Client struct {
	options       *Options
	cfg           *HTTPConfiguration
	store         *evaluation.SnapshotStore
	configManager *ConfigurationManager
	eventQueue    *EventQueue
}

// FeatureMetadata describes a feature without evaluating it.
type FeatureMetadata struct {
	Key     string
	Name    string
	Kind    evaluation.ValueKind
	Enabled bool
}

func NewClient(options *Options) (*Client, error) {
	if options == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}
	if options.EnvironmentID == "" {
		return nil, fmt.Errorf("environment id is required")
	}
	if !options.OfflineMode && options.SDKKey == "" {
		return nil, fmt.Errorf("sdk key is required unless running in offline mode")
	}
	options.CheckDefaults()
	if options.Logger != nil {
		util.SetLogger(options.Logger)
	}

	client := &Client{
		options:    options,
		cfg:        NewHTTPConfiguration(options),
		store:      evaluation.NewSnapshotStore(),
		eventQueue: newEventQueue(options),
	}
	client.configManager = newConfigurationManager(options, client.cfg, client.store)
	if err := client.configManager.initialize(); err != nil {
		return nil, err
	}
	return client, nil
}

// IsInitialized reports whether a snapshot has been published. Before
// that, every evaluation returns ErrNotInitialized.
func (c *Client) IsInitialized() bool {
	return c.store.HasConfig()
}

// State exposes the update coordinator's lifecycle state.
func (c *Client) State() CoordinatorState {
	return c.configManager.State()
}

// Errors delivers validation and publication failures from the update
// path. These never surface through the evaluation methods.
func (c *Client) Errors() <-chan error {
	return c.configManager.Errors()
}

// EvaluateFeature resolves the feature's value for the entity. Asking
// for a key that names a property is a type mismatch, not a miss.
func (c *Client) EvaluateFeature(key string, entity api.Entity) (evaluation.Result, error) {
	model, err := c.store.Current()
	if err != nil {
		return evaluation.Result{}, err
	}
	result, err := model.EvaluateFeature(key, entity)
	if err != nil {
		if errors.Is(err, evaluation.ErrFeatureNotFound) {
			if _, propErr := model.GetProperty(key); propErr == nil {
				return evaluation.Result{}, fmt.Errorf("%w: %q is a property, not a feature", evaluation.ErrTypeMismatch, key)
			}
		}
		return evaluation.Result{}, err
	}
	c.queueEvaluationEvent(api.EventType_FeatureEvaluated, key, entity, result)
	return result, nil
}

// EvaluateProperty resolves the property's value for the entity.
func (c *Client) EvaluateProperty(key string, entity api.Entity) (evaluation.Result, error) {
	model, err := c.store.Current()
	if err != nil {
		return evaluation.Result{}, err
	}
	result, err := model.EvaluateProperty(key, entity)
	if err != nil {
		if errors.Is(err, evaluation.ErrPropertyNotFound) {
			if _, featErr := model.GetFeature(key); featErr == nil {
				return evaluation.Result{}, fmt.Errorf("%w: %q is a feature, not a property", evaluation.ErrTypeMismatch, key)
			}
		}
		return evaluation.Result{}, err
	}
	c.queueEvaluationEvent(api.EventType_PropertyEvaluated, key, entity, result)
	return result, nil
}

// BooleanValue evaluates a boolean feature, returning the caller's
// default alongside the error when the key is unknown, the snapshot is
// not initialized, or the feature is not boolean-typed.
func (c *Client) BooleanValue(key string, entity api.Entity, defaultValue bool) (bool, error) {
	result, err := c.EvaluateFeature(key, entity)
	if err != nil {
		return defaultValue, err
	}
	if result.Kind != evaluation.ValueKindBoolean {
		return defaultValue, fmt.Errorf("%w: feature %q is %s", evaluation.ErrTypeMismatch, key, result.Kind)
	}
	return result.Value.(bool), nil
}

// StringValue evaluates a string-typed feature or property; features
// shadow properties when both scopes hold the key.
func (c *Client) StringValue(key string, entity api.Entity, defaultValue string) (string, error) {
	result, err := c.evaluateEither(key, entity)
	if err != nil {
		return defaultValue, err
	}
	if result.Kind != evaluation.ValueKindString {
		return defaultValue, fmt.Errorf("%w: %q is %s", evaluation.ErrTypeMismatch, key, result.Kind)
	}
	return result.Value.(string), nil
}

// NumberValue evaluates a numeric-typed feature or property.
func (c *Client) NumberValue(key string, entity api.Entity, defaultValue float64) (float64, error) {
	result, err := c.evaluateEither(key, entity)
	if err != nil {
		return defaultValue, err
	}
	if result.Kind != evaluation.ValueKindNumeric {
		return defaultValue, fmt.Errorf("%w: %q is %s", evaluation.ErrTypeMismatch, key, result.Kind)
	}
	num, ok := api.AttributeNumber(result.Value)
	if !ok {
		return defaultValue, fmt.Errorf("%w: %q value is not numeric", evaluation.ErrTypeMismatch, key)
	}
	return num, nil
}

// evaluateEither resolves the key against exactly one snapshot: the
// model that decides whether the key is a feature or a property is the
// model that evaluates it, so a publish in between cannot change the
// answer mid-call.
func (c *Client) evaluateEither(key string, entity api.Entity) (evaluation.Result, error) {
	model, err := c.store.Current()
	if err != nil {
		return evaluation.Result{}, err
	}
	if _, err := model.GetFeature(key); err == nil {
		result, err := model.EvaluateFeature(key, entity)
		if err != nil {
			return evaluation.Result{}, err
		}
		c.queueEvaluationEvent(api.EventType_FeatureEvaluated, key, entity, result)
		return result, nil
	}
	result, err := model.EvaluateProperty(key, entity)
	if err != nil {
		return evaluation.Result{}, err
	}
	c.queueEvaluationEvent(api.EventType_PropertyEvaluated, key, entity, result)
	return result, nil
}

// GetFeatureMetadata returns the feature's declared type and enabled
// flag without running an evaluation.
func (c *Client) GetFeatureMetadata(key string) (FeatureMetadata, error) {
	model, err := c.store.Current()
	if err != nil {
		return FeatureMetadata{}, err
	}
	feature, err := model.GetFeature(key)
	if err != nil {
		return FeatureMetadata{}, err
	}
	return FeatureMetadata{
		Key:     feature.FeatureID,
		Name:    feature.Name,
		Kind:    feature.Kind,
		Enabled: feature.Enabled,
	}, nil
}

// GetFeatureKeys lists the feature keys visible to this client's
// environment and collection scope.
func (c *Client) GetFeatureKeys() ([]string, error) {
	model, err := c.store.Current()
	if err != nil {
		return nil, err
	}
	return model.FeatureKeys(), nil
}

func (c *Client) GetPropertyKeys() ([]string, error) {
	model, err := c.store.Current()
	if err != nil {
		return nil, err
	}
	return model.PropertyKeys(), nil
}

func (c *Client) queueEvaluationEvent(eventType, key string, entity api.Entity, result evaluation.Result) {
	err := c.eventQueue.QueueEvent(api.EvaluationEvent{
		Type_:    eventType,
		Key:      key,
		EntityID: entity.EntityID,
		RuleID:   result.RuleID,
		Reason:   result.Reason,
		Value:    result.Value,
	})
	if err != nil && !errors.Is(err, ErrQueueFull) {
		util.Warnf("Failed to queue evaluation event: %s", err)
	}
}

// FlushEvents forces delivery of any queued evaluation events.
func (c *Client) FlushEvents() {
	c.eventQueue.FlushEvents()
}

func (c *Client) Close() {
	c.configManager.Close()
	c.eventQueue.Close()
}
