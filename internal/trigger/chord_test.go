package trigger

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		spec    string
		want    string
		wantErr bool
	}{
		{spec: "ctrl+r", want: "ctrl+r"},
		{spec: "Ctrl+R", want: "ctrl+r"},
		{spec: "CONTROL+x", want: "ctrl+x"},
		{spec: "alt+o", want: "alt+o"},
		{spec: "Option+G", want: "alt+g"},
		{spec: "meta+d", want: "alt+d"},
		{spec: "ctrl+alt+s", want: "ctrl+alt+s"},
		{spec: "alt+ctrl+s", want: "ctrl+alt+s"},
		{spec: " alt + m ", want: "alt+m"},
		{spec: "g", want: "g"},
		{spec: "5", want: "5"},
		{spec: "alt+1", want: "alt+1"},
		{spec: "", wantErr: true},
		{spec: "hyper+x", wantErr: true},
		{spec: "shift+a", wantErr: true},
		{spec: "ctrl+", wantErr: true},
		{spec: "ctrl+enter", wantErr: true},
		{spec: "ctrl+!", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.spec)
		if tt.wantErr {
			if !errors.Is(err, ErrBadBinding) {
				t.Errorf("Normalize(%q) error = %v, want ErrBadBinding", tt.spec, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestDecodeChord(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want string
		ok   bool
	}{
		{name: "ctrl+r", buf: []byte{0x12}, want: "ctrl+r", ok: true},
		{name: "ctrl+a", buf: []byte{0x01}, want: "ctrl+a", ok: true},
		{name: "ctrl+z", buf: []byte{0x1a}, want: "ctrl+z", ok: true},
		{name: "alt+o", buf: []byte{0x1b, 'o'}, want: "alt+o", ok: true},
		{name: "alt+uppercase", buf: []byte{0x1b, 'G'}, want: "alt+g", ok: true},
		{name: "plain letter", buf: []byte{'g'}, want: "g", ok: true},
		{name: "uppercase letter", buf: []byte{'G'}, want: "g", ok: true},
		{name: "digit", buf: []byte{'5'}, want: "5", ok: true},
		{name: "bare escape", buf: []byte{0x1b}, ok: false},
		{name: "empty read", buf: nil, ok: false},
		{name: "space", buf: []byte{' '}, ok: false},
		{name: "del", buf: []byte{0x7f}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeChord(tt.buf)
			if ok != tt.ok {
				t.Fatalf("decodeChord(%v) ok = %v, want %v", tt.buf, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("decodeChord(%v) = %q, want %q", tt.buf, got, tt.want)
			}
		})
	}
}
