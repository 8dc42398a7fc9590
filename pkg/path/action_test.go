package path

import (
	"encoding/json"
	"testing"

	"github.com/depmatrix/depmatrix/pkg/matrix"
)

func TestActionJSON(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		json   string
	}{
		{
			name:   "expand omits direction",
			action: NewExpand("core/db"),
			json:   `{"type":"expand","node":"core/db"}`,
		},
		{
			name:   "focus carries direction",
			action: NewFocus("core", matrix.FocusOut),
			json:   `{"type":"focus","node":"core","direction":"out"}`,
		},
		{
			name:   "focus both is explicit",
			action: NewFocus("core", matrix.FocusBoth),
			json:   `{"type":"focus","node":"core","direction":"both"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.action)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("json = %s, want %s", data, tt.json)
			}
			var back Action
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if back != tt.action {
				t.Errorf("round trip = %+v, want %+v", back, tt.action)
			}
		})
	}
}

func TestActionUnmarshalRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		`{"type":"zoom","node":"a"}`,
		`{"type":"expand"}`,
		`{"type":"focus","node":"a","direction":"sideways"}`,
	} {
		var a Action
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", bad)
		}
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		spec    string
		want    Action
		wantErr bool
	}{
		{spec: "expand:core", want: NewExpand("core")},
		{spec: "focus:out:core", want: NewFocus("core", matrix.FocusOut)},
		{spec: "focus:core", want: NewFocus("core", matrix.FocusBoth)},
		// Synthetic group IDs contain colons themselves.
		{spec: "expand:pkg::pkg/util", want: NewExpand("pkg::pkg/util")},
		{spec: "focus", wantErr: true},
		{spec: "drop:core", wantErr: true},
		{spec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseAction(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAction(%q) = %v, want error", tt.spec, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q): %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
			if round, err := ParseAction(got.String()); err != nil || round != got {
				t.Errorf("spec round trip %q -> %q -> %+v (%v)", tt.spec, got.String(), round, err)
			}
		})
	}
}
