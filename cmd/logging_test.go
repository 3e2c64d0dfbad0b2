package cmd

import (
	"testing"

	"github.com/df07/go-bdpt-renderer/pkg/log"
)

type fakeGlobals map[string]bool

func (f fakeGlobals) GlobalBool(name string) bool { return f[name] }

func TestVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		flags     fakeGlobals
		wantLevel log.Level
		wantSet   bool
	}{
		{"no flags", fakeGlobals{}, 0, false},
		{"verbose", fakeGlobals{"v": true}, log.Info, true},
		{"very verbose", fakeGlobals{"vv": true}, log.Debug, true},
		{"both flags", fakeGlobals{"v": true, "vv": true}, log.Debug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := verbosity(tt.flags)
			if ok != tt.wantSet {
				t.Fatalf("verbosity() set = %v, want %v", ok, tt.wantSet)
			}
			if ok && level != tt.wantLevel {
				t.Errorf("verbosity() = %d, want %d", level, tt.wantLevel)
			}
		})
	}
}
