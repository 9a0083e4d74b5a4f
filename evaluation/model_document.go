package evaluation

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// use a single instance of Validate, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Collection scopes which features and properties are visible to a
// client configuration.
type Collection struct {
	CollectionID string `json:"collection_id" validate:"required"`
	Name         string `json:"name"`
}

type Environment struct {
	EnvironmentID string      `json:"environment_id" validate:"required"`
	Name          string      `json:"name"`
	Features      []*Feature  `json:"features" validate:"dive"`
	Properties    []*Property `json:"properties" validate:"dive"`
}

// ConfigDocument is the wire shape delivered by the configuration
// service: every environment's features and properties plus the shared
// segments, stamped with a monotonic sequence number.
type ConfigDocument struct {
	SequenceNumber uint64         `json:"sequence_number"`
	Collections    []Collection   `json:"collections" validate:"dive"`
	Environments   []*Environment `json:"environments" validate:"required,min=1,dive"`
	Segments       []*Segment     `json:"segments" validate:"dive"`
}

// ConfigModel is one immutable, fully validated snapshot scoped to a
// single environment and collection. Instances are never mutated after
// construction; a new document produces a brand-new model.
type ConfigModel struct {
	sequenceNumber uint64
	environmentID  string
	collectionID   string
	etag           string
	features       map[string]*Feature
	properties     map[string]*Property
	segments       map[string]*Segment
}

// NewConfigModel parses, validates and indexes a raw configuration
// document for the given environment and collection. Construction is
// all-or-nothing: any validation failure yields no model at all.
func NewConfigModel(rawJSON []byte, environmentID, collectionID, etag string) (*ConfigModel, error) {
	doc := ConfigDocument{}
	if err := json.Unmarshal(rawJSON, &doc); err != nil {
		return nil, fmt.Errorf("config document is not valid JSON: %w", err)
	}
	return buildModel(&doc, environmentID, collectionID, etag)
}

func buildModel(doc *ConfigDocument, environmentID, collectionID, etag string) (*ConfigModel, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("config document validation failed: %w", err)
	}
	if collectionID != "" && !documentHasCollection(doc, collectionID) {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collectionID)
	}

	var environment *Environment
	for _, env := range doc.Environments {
		if env.EnvironmentID == environmentID {
			environment = env
			break
		}
	}
	if environment == nil {
		return nil, fmt.Errorf("%w: %q", ErrEnvironmentNotFound, environmentID)
	}

	segments := make(map[string]*Segment, len(doc.Segments))
	for _, segment := range doc.Segments {
		if _, exists := segments[segment.SegmentID]; exists {
			return nil, fmt.Errorf("duplicate segment id %q", segment.SegmentID)
		}
		segments[segment.SegmentID] = segment
	}

	features := make(map[string]*Feature)
	for _, feature := range environment.Features {
		if !visibleInCollection(feature.Collections, collectionID) {
			continue
		}
		if _, exists := features[feature.FeatureID]; exists {
			return nil, fmt.Errorf("duplicate feature id %q in collection scope", feature.FeatureID)
		}
		if !valueMatchesKind(feature.EnabledValue, feature.Kind) {
			return nil, fmt.Errorf("feature %q: enabled value does not match declared type %s", feature.FeatureID, feature.Kind)
		}
		if !valueMatchesKind(feature.DisabledValue, feature.Kind) {
			return nil, fmt.Errorf("feature %q: disabled value does not match declared type %s", feature.FeatureID, feature.Kind)
		}
		if err := validateTargetingRules(feature.SegmentRules, feature.Kind, segments); err != nil {
			return nil, fmt.Errorf("feature %q: %w", feature.FeatureID, err)
		}
		sortRules(feature.SegmentRules)
		features[feature.FeatureID] = feature
	}

	properties := make(map[string]*Property)
	for _, property := range environment.Properties {
		if !visibleInCollection(property.Collections, collectionID) {
			continue
		}
		if _, exists := properties[property.PropertyID]; exists {
			return nil, fmt.Errorf("duplicate property id %q in collection scope", property.PropertyID)
		}
		if _, exists := features[property.PropertyID]; exists {
			return nil, fmt.Errorf("property id %q collides with a feature id in the same collection scope", property.PropertyID)
		}
		if !valueMatchesKind(property.Value, property.Kind) {
			return nil, fmt.Errorf("property %q: value does not match declared type %s", property.PropertyID, property.Kind)
		}
		if err := validateTargetingRules(property.SegmentRules, property.Kind, segments); err != nil {
			return nil, fmt.Errorf("property %q: %w", property.PropertyID, err)
		}
		sortRules(property.SegmentRules)
		properties[property.PropertyID] = property
	}

	return &ConfigModel{
		sequenceNumber: doc.SequenceNumber,
		environmentID:  environmentID,
		collectionID:   collectionID,
		etag:           etag,
		features:       features,
		properties:     properties,
		segments:       segments,
	}, nil
}

func documentHasCollection(doc *ConfigDocument, collectionID string) bool {
	for _, collection := range doc.Collections {
		if collection.CollectionID == collectionID {
			return true
		}
	}
	return false
}

// visibleInCollection reports whether an entry tagged with the given
// collection ids is visible to the configured collection. An empty tag
// list means visible everywhere.
func visibleInCollection(tagged []string, collectionID string) bool {
	if collectionID == "" || len(tagged) == 0 {
		return true
	}
	for _, id := range tagged {
		if id == collectionID {
			return true
		}
	}
	return false
}

func validateTargetingRules(rules []*TargetingRule, kind ValueKind, segments map[string]*Segment) error {
	for _, rule := range rules {
		for _, group := range rule.Rules {
			for _, segmentID := range group.Segments {
				if _, ok := segments[segmentID]; !ok {
					return fmt.Errorf("targeting rule %d references unknown segment %q", rule.Order, segmentID)
				}
			}
		}
		if !isDefaultSentinel(rule.Value) && !valueMatchesKind(rule.Value, kind) {
			return fmt.Errorf("targeting rule %d value does not match declared type %s", rule.Order, kind)
		}
		switch v := rule.RolloutPercentage.(type) {
		case nil:
		case float64:
			if v < 0 || v > 100 {
				return fmt.Errorf("targeting rule %d rollout percentage %v is outside [0,100]", rule.Order, v)
			}
		case string:
			if v != DefaultSentinel {
				return fmt.Errorf("targeting rule %d rollout percentage must be a number or %q", rule.Order, DefaultSentinel)
			}
		default:
			return fmt.Errorf("targeting rule %d rollout percentage has invalid type %T", rule.Order, v)
		}
	}
	return nil
}

// Rule order is semantically significant: first match wins. The walk is
// over an explicit sorted slice, never a map.
func sortRules(rules []*TargetingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Order < rules[j].Order
	})
}

func (m *ConfigModel) SequenceNumber() uint64 { return m.sequenceNumber }
func (m *ConfigModel) EnvironmentID() string  { return m.environmentID }
func (m *ConfigModel) CollectionID() string   { return m.collectionID }
func (m *ConfigModel) Etag() string           { return m.etag }

func (m *ConfigModel) GetFeature(key string) (*Feature, error) {
	if feature, ok := m.features[key]; ok {
		return feature, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFeatureNotFound, key)
}

func (m *ConfigModel) GetProperty(key string) (*Property, error) {
	if property, ok := m.properties[key]; ok {
		return property, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPropertyNotFound, key)
}

func (m *ConfigModel) GetSegment(id string) (*Segment, bool) {
	segment, ok := m.segments[id]
	return segment, ok
}

func (m *ConfigModel) FeatureKeys() []string {
	keys := make([]string, 0, len(m.features))
	for key := range m.features {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *ConfigModel) PropertyKeys() []string {
	keys := make([]string, 0, len(m.properties))
	for key := range m.properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
