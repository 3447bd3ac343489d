package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value kept",
			args:         []string{"-a", ":8080", "-x", "nope"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":8080"},
		},
		{
			name:         "equals form kept",
			args:         []string{"--secret=abc", "-d", "dsn"},
			allowedFlags: []string{"--secret"},
			want:         []string{"--secret=abc"},
		},
		{
			name:         "flag without value",
			args:         []string{"-v", "-a", ":9090"},
			allowedFlags: []string{"-v"},
			want:         []string{"-v"},
		},
		{
			name:         "value looking like flag not swallowed",
			args:         []string{"-a", "-d"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", "-d"},
		},
		{
			name:         "nothing allowed",
			args:         []string{"-a", ":8080"},
			allowedFlags: []string{"-z"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"app", "-c", "conf.json", "-a", ":8080"}
	assert.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"app", "-a", ":8080"}
	assert.Equal(t, "", JsonConfigFlags())
}
