package appconfig

import (
	"net/http"
	"time"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/util"
)

type Options struct {
	// SDKKey identifies the client configuration to the remote service.
	SDKKey string `json:"sdkKey"`

	// EnvironmentID and CollectionID scope which features and properties
	// this client sees. EnvironmentID is required.
	EnvironmentID string `json:"environmentId"`
	CollectionID  string `json:"collectionId,omitempty"`

	ConfigURI             string        `json:"configUri,omitempty"`
	SSEURI                string        `json:"sseUri,omitempty"`
	ConfigPollingInterval time.Duration `json:"configPollingInterval,omitempty"`
	RequestTimeout        time.Duration `json:"requestTimeout,omitempty"`

	DisableRealtimeUpdates bool `json:"disableRealtimeUpdates,omitempty"`

	// OfflineMode disables all network access; the snapshot comes from
	// BootstrapPath, which is watched for edits.
	OfflineMode   bool   `json:"offlineMode,omitempty"`
	BootstrapPath string `json:"bootstrapPath,omitempty"`

	// Persistence, when set, seeds the initial snapshot before the first
	// live update arrives and stores every accepted document.
	Persistence PersistenceStore `json:"-"`

	EventFlushInterval  time.Duration `json:"eventFlushInterval,omitempty"`
	MaxEventQueueSize   int           `json:"maxEventQueueSize,omitempty"`
	FlushEventQueueSize int           `json:"flushEventQueueSize,omitempty"`

	// EvaluationEventHandler receives batched evaluation events for
	// external usage reporting. Nil disables the queue.
	EvaluationEventHandler chan api.FlushPayload `json:"-"`
	// ClientEventHandler receives lifecycle events (initialized, config
	// updated/rejected, SSE connection state).
	ClientEventHandler chan api.ClientEvent `json:"-"`

	Logger util.Logger `json:"-"`
}

func (o *Options) CheckDefaults() {
	if o.ConfigURI == "" {
		o.ConfigURI = "https://config.configflow.dev"
	}
	if o.SSEURI == "" {
		o.SSEURI = "https://realtime.configflow.dev"
	}
	if o.ConfigPollingInterval < time.Minute {
		o.ConfigPollingInterval = time.Minute
	}
	if o.RequestTimeout <= time.Second {
		o.RequestTimeout = time.Second * 10
	}
	if o.EventFlushInterval <= time.Millisecond*500 {
		o.EventFlushInterval = time.Second * 30
	}
	if o.MaxEventQueueSize <= 0 {
		o.MaxEventQueueSize = 10000
	}
	if o.FlushEventQueueSize <= 0 {
		o.FlushEventQueueSize = 100
	}
}

type HTTPConfiguration struct {
	ConfigBasePath string
	SSEBasePath    string
	HTTPClient     *http.Client
}

func NewHTTPConfiguration(options *Options) *HTTPConfiguration {
	return &HTTPConfiguration{
		ConfigBasePath: options.ConfigURI,
		SSEBasePath:    options.SSEURI,
		HTTPClient: &http.Client{
			Timeout: options.RequestTimeout,
		},
	}
}
