package appconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/launchdarkly/eventsource"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/util"
)

// SSEManager maintains the realtime stream from the configuration
// service. The stream never carries documents, only "a new configuration
// is available" signals; the coordinator refetches over HTTP so both
// paths share the same validation and publication logic.
type SSEManager struct {
	configManager *ConfigurationManager
	options       *Options
	// streamMu guards stream, which StopSSE nils out while the receive
	// goroutine is still running
	streamMu         sync.Mutex
	stream           *eventsource.Stream
	url              string
	errorHandler     eventsource.StreamErrorHandler
	context          context.Context
	stopEventHandler context.CancelFunc
	cfg              *HTTPConfiguration
	Started          bool
	Connected        atomic.Bool
}

type sseMessage struct {
	Type_          string `json:"type,omitempty"`
	SequenceNumber uint64 `json:"sequenceNumber,omitempty"`
	Etag           string `json:"etag,omitempty"`
}

func newSSEManager(configManager *ConfigurationManager, options *Options, cfg *HTTPConfiguration) (*SSEManager, error) {
	if options == nil {
		return nil, fmt.Errorf("SSE - Options cannot be nil")
	}
	sseManager := &SSEManager{
		configManager: configManager,
		options:       options,
		errorHandler: func(err error) eventsource.StreamErrorHandlerResult {
			util.Debugf("SSE - Error: %v", err)
			return eventsource.StreamErrorHandlerResult{
				CloseNow: false,
			}
		},
		cfg: cfg,
	}
	sseManager.Connected.Store(false)
	sseManager.context, sseManager.stopEventHandler = context.WithCancel(context.Background())
	return sseManager, nil
}

func (m *SSEManager) Start() error {
	return m.connectSSE(fmt.Sprintf("%s/realtime/v1/%s/%s", m.cfg.SSEBasePath, m.options.SDKKey, m.options.EnvironmentID))
}

func (m *SSEManager) connectSSE(url string) (err error) {
	// Close any open stream before opening a new one to prevent races on
	// reading the event channel
	m.StopSSE()
	m.url = url

	sseClientEvent := api.ClientEvent{
		EventType: api.ClientEventType_InternalSSEConnected,
		EventData: "Connected to SSE stream: " + url,
		Status:    "success",
		Error:     nil,
	}
	defer func() {
		m.configManager.InternalClientEvents <- sseClientEvent
	}()

	sse, err := eventsource.SubscribeWithURL(url,
		eventsource.StreamOptionCanRetryFirstConnection(m.options.RequestTimeout),
		eventsource.StreamOptionErrorHandler(m.errorHandler),
		eventsource.StreamOptionUseBackoff(m.options.RequestTimeout),
		eventsource.StreamOptionUseJitter(0.25),
		eventsource.StreamOptionHTTPClient(m.cfg.HTTPClient))
	if err != nil {
		sseClientEvent.EventType = api.ClientEventType_InternalSSEFailure
		sseClientEvent.Status = "failure"
		sseClientEvent.Error = err
		sseClientEvent.EventData = "Error connecting to SSE stream: " + url
		return
	}
	m.Connected.Store(true)
	m.streamMu.Lock()
	m.stream = sse
	m.streamMu.Unlock()
	m.Started = true
	go m.receiveSSEMessages(sse.Events)
	return
}

func (m *SSEManager) parseMessage(rawMessage []byte) (message sseMessage, err error) {
	err = json.Unmarshal(rawMessage, &message)
	return
}

// receiveSSEMessages owns its event channel for the stream's lifetime;
// a closed stream surfaces as a closed channel rather than a shared
// field read.
func (m *SSEManager) receiveSSEMessages(events <-chan eventsource.Event) {
	for {
		select {
		case <-m.context.Done():
			m.Connected.Store(false)
			m.configManager.InternalClientEvents <- api.ClientEvent{
				EventType: api.ClientEventType_InternalSSEFailure,
				EventData: "SSE stream has been stopped",
				Status:    "failure",
				Error:     m.context.Err(),
			}
			return
		case event, ok := <-events:
			if !ok {
				m.Connected.Store(false)
				return
			}
			message, err := m.parseMessage([]byte(event.Data()))
			if err != nil {
				util.Debugf("SSE - Error unmarshalling message: %v", err)
				continue
			}
			if message.Type_ == "configUpdated" || message.Type_ == "" {
				util.Debugf("SSE - New configuration available, sequence %d", message.SequenceNumber)
				m.configManager.InternalClientEvents <- api.ClientEvent{
					EventType: api.ClientEventType_InternalNewConfigAvailable,
					EventData: message.SequenceNumber,
					Status:    "",
					Error:     nil,
				}
			}
		}
	}
}

func (m *SSEManager) StopSSE() {
	m.streamMu.Lock()
	defer m.streamMu.Unlock()
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
}

func (m *SSEManager) Close() {
	m.stopEventHandler()
	m.StopSSE()
}
