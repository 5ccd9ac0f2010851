package fake_test

import (
	"errors"
	"testing"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/fake"
)

func TestViewMatchesByteViewContract(t *testing.T) {
	v := fake.NewView([]byte{1, 2, 3}, false)
	if v.Len() != 3 {
		t.Fatalf("Len = %d, want 3", v.Len())
	}
	if err := v.SetAt(1, 9); err != nil {
		t.Fatalf("SetAt: %v", err)
	}
	if got, err := v.IndexOf(9); err != nil || got != 1 {
		t.Errorf("IndexOf = (%d, %v), want (1, nil)", got, err)
	}
	if _, err := v.At(3); !errors.Is(err, api.ErrIndexOutOfRange) {
		t.Errorf("At(3) = %v, want ErrIndexOutOfRange", err)
	}

	ro := fake.NewView([]byte{1}, true)
	if err := ro.SetAt(0, 2); !errors.Is(err, api.ErrNotSupported) {
		t.Errorf("read-only SetAt = %v, want ErrNotSupported", err)
	}

	_ = v.Dispose()
	if _, err := v.At(0); !errors.Is(err, api.ErrDisposed) {
		t.Errorf("At after dispose = %v, want ErrDisposed", err)
	}
	if _, err := v.IndexOf(9); !errors.Is(err, api.ErrDisposed) {
		t.Errorf("IndexOf after dispose = %v, want ErrDisposed", err)
	}
	if _, err := v.Contains(9); !errors.Is(err, api.ErrDisposed) {
		t.Errorf("Contains after dispose = %v, want ErrDisposed", err)
	}
}
