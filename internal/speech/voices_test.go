package speech

import "testing"

func TestResolveVoice(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"rachel", "21m00Tcm4TlvDq8ikWAM"},
		{"adam", "pNInz6obpgDQGcFmaJgB"},
		{"unknown-voice", DefaultVoiceID},
		{"", DefaultVoiceID},
	}

	for _, tt := range tests {
		if got := ResolveVoice(tt.name); got != tt.want {
			t.Errorf("ResolveVoice(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
