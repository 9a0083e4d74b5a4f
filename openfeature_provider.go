package appconfig

import (
	"context"
	"errors"

	"github.com/open-feature/go-sdk/pkg/openfeature"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/evaluation"
)

// ConfigProvider implements the OpenFeature FeatureProvider interface on
// top of Client, so hosts standardized on OpenFeature can evaluate
// features and properties without touching the SDK surface directly.
type ConfigProvider struct {
	Client *Client
}

// Metadata returns the metadata of the provider
func (p ConfigProvider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{Name: "configflow-go-provider"}
}

// BooleanEvaluation returns a boolean flag
func (p ConfigProvider) BooleanEvaluation(ctx context.Context, flag string, defaultValue bool, evalCtx openfeature.FlattenedContext) openfeature.BoolResolutionDetail {
	entity, err := createEntityFromEvaluationContext(evalCtx)
	if err != nil {
		return openfeature.BoolResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()), Reason: openfeature.ErrorReason,
			},
		}
	}

	value, err := p.Client.BooleanValue(flag, entity, defaultValue)
	if err != nil {
		return openfeature.BoolResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: resolutionErrorDetail(flag, err),
		}
	}
	return openfeature.BoolResolutionDetail{Value: value, ProviderResolutionDetail: openfeature.ProviderResolutionDetail{Reason: openfeature.TargetingMatchReason}}
}

// StringEvaluation returns a string flag
func (p ConfigProvider) StringEvaluation(ctx context.Context, flag string, defaultValue string, evalCtx openfeature.FlattenedContext) openfeature.StringResolutionDetail {
	entity, err := createEntityFromEvaluationContext(evalCtx)
	if err != nil {
		return openfeature.StringResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()), Reason: openfeature.ErrorReason,
			},
		}
	}

	value, err := p.Client.StringValue(flag, entity, defaultValue)
	if err != nil {
		return openfeature.StringResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: resolutionErrorDetail(flag, err),
		}
	}
	return openfeature.StringResolutionDetail{Value: value, ProviderResolutionDetail: openfeature.ProviderResolutionDetail{Reason: openfeature.TargetingMatchReason}}
}

// FloatEvaluation returns a float flag
func (p ConfigProvider) FloatEvaluation(ctx context.Context, flag string, defaultValue float64, evalCtx openfeature.FlattenedContext) openfeature.FloatResolutionDetail {
	entity, err := createEntityFromEvaluationContext(evalCtx)
	if err != nil {
		return openfeature.FloatResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()), Reason: openfeature.ErrorReason,
			},
		}
	}

	value, err := p.Client.NumberValue(flag, entity, defaultValue)
	if err != nil {
		return openfeature.FloatResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: resolutionErrorDetail(flag, err),
		}
	}
	return openfeature.FloatResolutionDetail{Value: value, ProviderResolutionDetail: openfeature.ProviderResolutionDetail{Reason: openfeature.TargetingMatchReason}}
}

// IntEvaluation returns an int flag
func (p ConfigProvider) IntEvaluation(ctx context.Context, flag string, defaultValue int64, evalCtx openfeature.FlattenedContext) openfeature.IntResolutionDetail {
	entity, err := createEntityFromEvaluationContext(evalCtx)
	if err != nil {
		return openfeature.IntResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()), Reason: openfeature.ErrorReason,
			},
		}
	}

	value, err := p.Client.NumberValue(flag, entity, float64(defaultValue))
	if err != nil {
		return openfeature.IntResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: resolutionErrorDetail(flag, err),
		}
	}
	return openfeature.IntResolutionDetail{Value: int64(value), ProviderResolutionDetail: openfeature.ProviderResolutionDetail{Reason: openfeature.TargetingMatchReason}}
}

// ObjectEvaluation returns the raw resolved value of a feature or
// property without type coercion
func (p ConfigProvider) ObjectEvaluation(ctx context.Context, flag string, defaultValue interface{}, evalCtx openfeature.FlattenedContext) openfeature.InterfaceResolutionDetail {
	entity, err := createEntityFromEvaluationContext(evalCtx)
	if err != nil {
		return openfeature.InterfaceResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: openfeature.ProviderResolutionDetail{
				ResolutionError: openfeature.NewInvalidContextResolutionError(err.Error()), Reason: openfeature.ErrorReason,
			},
		}
	}

	result, err := p.Client.evaluateEither(flag, entity)
	if err != nil {
		return openfeature.InterfaceResolutionDetail{
			Value: defaultValue,
			ProviderResolutionDetail: resolutionErrorDetail(flag, err),
		}
	}
	reason := openfeature.TargetingMatchReason
	if result.Reason != api.EvaluationReasonTargetingMatch {
		reason = openfeature.DefaultReason
	}
	return openfeature.InterfaceResolutionDetail{Value: result.Value, ProviderResolutionDetail: openfeature.ProviderResolutionDetail{Reason: reason}}
}

// Hooks returns hooks
func (p ConfigProvider) Hooks() []openfeature.Hook {
	return []openfeature.Hook{}
}

func resolutionErrorDetail(flag string, err error) openfeature.ProviderResolutionDetail {
	switch {
	case errors.Is(err, evaluation.ErrFeatureNotFound), errors.Is(err, evaluation.ErrPropertyNotFound):
		return openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewFlagNotFoundResolutionError(err.Error()), Reason: openfeature.ErrorReason,
		}
	case errors.Is(err, evaluation.ErrTypeMismatch):
		return openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewTypeMismatchResolutionError(err.Error()), Reason: openfeature.ErrorReason,
		}
	case errors.Is(err, evaluation.ErrNotInitialized):
		return openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewProviderNotReadyResolutionError(err.Error()), Reason: openfeature.ErrorReason,
		}
	default:
		return openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewGeneralResolutionError(err.Error()), Reason: openfeature.ErrorReason,
		}
	}
}

func createEntityFromEvaluationContext(evalCtx openfeature.FlattenedContext) (api.Entity, error) {
	entityID := ""
	if v, exists := evalCtx["entityId"]; exists {
		entityID, _ = v.(string)
	} else if v, exists := evalCtx[openfeature.TargetingKey]; exists {
		entityID, _ = v.(string)
	}
	if entityID == "" {
		return api.Entity{}, errors.New("entityId or targetingKey must be provided")
	}

	entity := api.NewEntity(entityID)
	for key, value := range evalCtx {
		if key == "entityId" || key == openfeature.TargetingKey || value == nil {
			continue
		}
		switch v := value.(type) {
		case string, bool, float64:
			entity.Attributes[key] = v
		case int:
			entity.Attributes[key] = float64(v)
		case int64:
			entity.Attributes[key] = float64(v)
		case float32:
			entity.Attributes[key] = float64(v)
		default:
			// attribute types outside the wire contract are skipped
		}
	}
	return entity, nil
}
