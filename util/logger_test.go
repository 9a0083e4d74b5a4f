package util

import (
	"sync"
	"testing"
)

func TestSetLogger_ConcurrentWithLogging(t *testing.T) {
	previous := activeLogger()
	t.Cleanup(func() { SetLogger(previous) })

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				Debugf("message %d", i)
				Warnf("message %d", i)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			SetLogger(DiscardLogger{})
		}
	}()
	wg.Wait()

	if err := Errorf("boom %d", 1); err == nil || err.Error() != "boom 1" {
		t.Fatalf("unexpected error from Errorf: %v", err)
	}
}

func TestSetLogger_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil logger")
		}
	}()
	SetLogger(nil)
}
