//go:build linux || darwin

package bridge_test

import (
	"errors"
	"testing"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/bridge"
)

func TestOpenNativeMissingLibrary(t *testing.T) {
	_, err := bridge.OpenNative("/nonexistent/libfbhost.so")
	if !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("OpenNative = %v, want ErrInvalidArgument", err)
	}
}

func TestDefaultSymbols(t *testing.T) {
	s := bridge.DefaultSymbols("jni_")
	if s.Pin != "jni_pin_array" || s.ReleaseRef != "jni_delete_global_ref" {
		t.Errorf("unexpected symbol names: %+v", s)
	}
}
