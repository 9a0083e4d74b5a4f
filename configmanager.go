package appconfig

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matryer/try"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/evaluation"
	"github.com/configflow/go-client-sdk/util"
)

// CoordinatorState tracks the update coordinator's lifecycle:
// Uninitialized -> Loading -> Ready <-> Refreshing. Uninitialized is the
// only state in which the snapshot store may report "not initialized".
type CoordinatorState int32

const (
	StateUninitialized CoordinatorState = iota
	StateLoading
	StateReady
	StateRefreshing
)

func (s CoordinatorState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	default:
		return "uninitialized"
	}
}

const maxConfigFetchAttempts = 3

// ConfigurationManager subscribes to the configuration sources (HTTP
// polling, SSE refresh signals, or an offline bootstrap file), parses
// and validates incoming documents and publishes them to the snapshot
// store. Validation failures never reach the evaluation path: the last
// good snapshot stays authoritative and the error is reported on the
// Errors channel instead.
type ConfigurationManager struct {
	options    *Options
	cfg        *HTTPConfiguration
	store      *evaluation.SnapshotStore
	httpClient *http.Client

	// fetchMu serializes the polling loop against SSE-triggered fetches;
	// configEtag and firstLoad are only touched under it once the update
	// goroutines are running
	fetchMu    sync.Mutex
	configEtag string
	state      atomic.Int32
	firstLoad  bool

	ticker      *time.Ticker
	pollingStop chan bool
	sseManager  *SSEManager
	bootstrap   *bootstrapWatcher

	errors               chan error
	InternalClientEvents chan api.ClientEvent

	context context.Context
	cancel  context.CancelFunc
}

func newConfigurationManager(options *Options, cfg *HTTPConfiguration, store *evaluation.SnapshotStore) *ConfigurationManager {
	c := &ConfigurationManager{
		options:              options,
		cfg:                  cfg,
		store:                store,
		httpClient:           cfg.HTTPClient,
		firstLoad:            true,
		pollingStop:          make(chan bool, 2),
		errors:               make(chan error, 16),
		InternalClientEvents: make(chan api.ClientEvent, 16),
	}
	c.context, c.cancel = context.WithCancel(context.Background())
	return c
}

func (c *ConfigurationManager) initialize() error {
	if c.options.OfflineMode {
		if c.options.BootstrapPath == "" {
			return fmt.Errorf("offline mode requires a bootstrap path")
		}
		watcher, err := newBootstrapWatcher(c.options.BootstrapPath, c.applyDocument)
		if err != nil {
			return err
		}
		c.bootstrap = watcher
		c.setState(StateLoading)
		if err := watcher.start(c.context); err != nil {
			return err
		}
		return nil
	}

	c.setState(StateLoading)
	c.seedFromPersistence()

	if err := c.fetchConfig(); err != nil {
		if !c.store.HasConfig() {
			return err
		}
		util.Warnf("Initial config fetch failed, serving persisted snapshot: %s", err)
	}

	c.ticker = time.NewTicker(c.options.ConfigPollingInterval)
	go c.pollForConfig()

	if !c.options.DisableRealtimeUpdates {
		sseManager, err := newSSEManager(c, c.options, c.cfg)
		if err != nil {
			return err
		}
		c.sseManager = sseManager
		go c.handleInternalEvents()
		if err := c.sseManager.Start(); err != nil {
			util.Warnf("Realtime updates unavailable, falling back to polling only: %s", err)
		}
	}
	return nil
}

// seedFromPersistence loads the last-known-good document before the
// first live update arrives. Failures here are never fatal: a stale or
// corrupt cache just means we wait for the network.
func (c *ConfigurationManager) seedFromPersistence() {
	if c.options.Persistence == nil {
		return
	}
	raw, found, err := c.options.Persistence.Load()
	if err != nil {
		util.Warnf("Could not load persisted config: %s", err)
		return
	}
	if !found {
		return
	}
	if err := c.applyDocument(raw, ""); err != nil {
		util.Warnf("Persisted config was not applied: %s", err)
	}
}

func (c *ConfigurationManager) pollForConfig() {
	for {
		select {
		case <-c.pollingStop:
			util.Infof("Stopping config polling.")
			c.ticker.Stop()
			return
		case <-c.ticker.C:
			if err := c.fetchConfig(); err != nil {
				util.Warnf("Error fetching config: %s", err)
			}
		}
	}
}

// handleInternalEvents turns SSE refresh signals into config fetches and
// forwards everything to the host's client event channel.
func (c *ConfigurationManager) handleInternalEvents() {
	for {
		select {
		case <-c.context.Done():
			return
		case event := <-c.InternalClientEvents:
			if event.EventType == api.ClientEventType_InternalNewConfigAvailable {
				if err := c.fetchConfig(); err != nil {
					util.Warnf("Error fetching config after realtime signal: %s", err)
				}
			}
			c.emitClientEvent(event)
		}
	}
}

func (c *ConfigurationManager) fetchConfig() error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	if c.store.HasConfig() {
		c.setState(StateRefreshing)
	}
	err := try.Do(func(attempt int) (bool, error) {
		retryable, err := c.performFetch()
		if err != nil && retryable && attempt < maxConfigFetchAttempts {
			util.Warnf("Retrying config fetch (attempt %d): %s", attempt, err)
			return true, err
		}
		return false, err
	})
	if c.store.HasConfig() {
		c.setState(StateReady)
	}
	return err
}

func (c *ConfigurationManager) performFetch() (retryable bool, err error) {
	req, err := http.NewRequestWithContext(c.context, http.MethodGet, c.getConfigURL(), nil)
	if err != nil {
		return false, err
	}
	if c.configEtag != "" {
		req.Header.Set("If-None-Match", c.configEtag)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	switch statusCode := resp.StatusCode; {
	case statusCode == http.StatusOK:
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return true, readErr
		}
		return false, c.applyDocument(raw, resp.Header.Get("Etag"))
	case statusCode == http.StatusNotModified:
		return false, nil
	case statusCode == http.StatusForbidden:
		c.stopPolling()
		return false, fmt.Errorf("invalid SDK key. Aborting config polling")
	case statusCode >= 500:
		return true, fmt.Errorf("config fetch failed. Status: %s", resp.Status)
	default:
		return false, util.Errorf("Unexpected response code %d fetching config from %s", resp.StatusCode, c.getConfigURL())
	}
}

// applyDocument parses and validates a configuration document and, on
// success, atomically publishes the resulting model. A document that
// fails validation, or that carries a sequence number older than the
// published snapshot, is rejected whole: no partial model is ever
// visible to readers.
func (c *ConfigurationManager) applyDocument(raw []byte, etag string) error {
	model, err := evaluation.NewConfigModel(raw, c.options.EnvironmentID, c.options.CollectionID, etag)
	if err != nil {
		c.reportError(err)
		c.emitClientEvent(api.ClientEvent{
			EventType: api.ClientEventType_ConfigRejected,
			EventData: "config document rejected",
			Status:    "failure",
			Error:     err,
		})
		return err
	}
	if err := c.store.Publish(model); err != nil {
		c.reportError(err)
		c.emitClientEvent(api.ClientEvent{
			EventType: api.ClientEventType_ConfigRejected,
			EventData: fmt.Sprintf("stale document with sequence number %d rejected", model.SequenceNumber()),
			Status:    "failure",
			Error:     err,
		})
		return err
	}

	c.configEtag = etag
	c.setState(StateReady)
	util.Infof("Config set. Sequence: %d ETag: %s", model.SequenceNumber(), etag)

	if c.options.Persistence != nil {
		if err := c.options.Persistence.Save(raw); err != nil {
			util.Warnf("Could not persist config document: %s", err)
		}
	}

	if c.firstLoad {
		c.firstLoad = false
		util.Infof("Configuration client initialized.")
		c.emitClientEvent(api.ClientEvent{
			EventType: api.ClientEventType_Initialized,
			EventData: "config client initialized",
			Status:    "success",
		})
	} else {
		c.emitClientEvent(api.ClientEvent{
			EventType: api.ClientEventType_ConfigUpdated,
			EventData: model.SequenceNumber(),
			Status:    "success",
		})
	}
	return nil
}

func (c *ConfigurationManager) getConfigURL() string {
	return fmt.Sprintf("%s/config/v1/%s/%s.json", c.cfg.ConfigBasePath, c.options.SDKKey, c.options.EnvironmentID)
}

func (c *ConfigurationManager) reportError(err error) {
	select {
	case c.errors <- err:
	default:
		util.Warnf("Coordinator error channel full, dropping: %s", err)
	}
}

func (c *ConfigurationManager) emitClientEvent(event api.ClientEvent) {
	if c.options.ClientEventHandler == nil {
		return
	}
	select {
	case c.options.ClientEventHandler <- event:
	default:
	}
}

// Errors exposes validation and publication failures to the host
// application. Evaluation callers never see these.
func (c *ConfigurationManager) Errors() <-chan error {
	return c.errors
}

func (c *ConfigurationManager) State() CoordinatorState {
	return CoordinatorState(c.state.Load())
}

func (c *ConfigurationManager) setState(state CoordinatorState) {
	c.state.Store(int32(state))
}

func (c *ConfigurationManager) HasConfig() bool {
	return c.store.HasConfig()
}

func (c *ConfigurationManager) stopPolling() {
	select {
	case c.pollingStop <- true:
	default:
	}
}

func (c *ConfigurationManager) Close() {
	c.stopPolling()
	if c.sseManager != nil {
		c.sseManager.Close()
	}
	if c.bootstrap != nil {
		_ = c.bootstrap.Close()
	}
	c.cancel()
}
