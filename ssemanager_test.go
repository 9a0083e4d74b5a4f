package appconfig

import (
	"testing"
)

const test_sseConfigUpdated = `{"type":"configUpdated","sequenceNumber":42,"etag":"\"714bc6a9acb038971923289ee6ce665b\""}`

func TestSSEManager_ParseMessage(t *testing.T) {
	m := &SSEManager{}
	message, err := m.parseMessage([]byte(test_sseConfigUpdated))
	if err != nil {
		t.Fatal(err)
	}
	if message.Type_ != "configUpdated" {
		t.Fatalf("message.Type_ != \"configUpdated\": %q", message.Type_)
	}
	if message.SequenceNumber != 42 {
		t.Fatalf("message.SequenceNumber != 42: %d", message.SequenceNumber)
	}
	if message.Etag != "\"714bc6a9acb038971923289ee6ce665b\"" {
		t.Fatalf("unexpected etag: %q", message.Etag)
	}
}

func TestSSEManager_ParseMessage_BareSignal(t *testing.T) {
	m := &SSEManager{}
	message, err := m.parseMessage([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if message.Type_ != "" {
		t.Fatalf("message.Type_ != \"\": %q", message.Type_)
	}
}
