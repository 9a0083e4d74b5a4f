package evaluation

import "errors"

var ErrFeatureNotFound = errors.New("feature does not exist in the configuration")
var ErrPropertyNotFound = errors.New("property does not exist in the configuration")
var ErrNotInitialized = errors.New("no configuration snapshot has been published yet")
var ErrStaleSequence = errors.New("document sequence number is older than the published snapshot")
var ErrTypeMismatch = errors.New("requested value type does not match the configured type")
var ErrEnvironmentNotFound = errors.New("environment does not exist in the configuration document")
var ErrCollectionNotFound = errors.New("collection does not exist in the configuration document")
