package api

import "strconv"

// Entity is the subject of an evaluation: an identifier used as the
// rollout hash input plus the attributes that segment conditions are
// matched against. Entities are constructed per call and never retained.
type Entity struct {
	EntityID   string                 `json:"entityId"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

func NewEntity(entityID string) Entity {
	return Entity{EntityID: entityID, Attributes: map[string]interface{}{}}
}

func (e Entity) WithAttribute(name string, value interface{}) Entity {
	attrs := make(map[string]interface{}, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[name] = value
	return Entity{EntityID: e.EntityID, Attributes: attrs}
}

// Attribute returns the named attribute value, or false if the entity
// does not carry it.
func (e Entity) Attribute(name string) (interface{}, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// AttributeString stringifies scalar attribute values the same way the
// service's other SDKs do, so string operators behave identically
// everywhere.
func AttributeString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// AttributeNumber coerces scalar attribute values to float64 for the
// numeric operators. Strings are parsed; parse failure means the
// condition fails closed.
func AttributeNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
