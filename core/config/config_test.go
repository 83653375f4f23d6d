package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaults(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Defaults()
	assert.NotNil(t, cfg)

	assert.Equal(t, DefaultPrompt, cfg.Prompt)
	assert.Equal(t, 100, cfg.HistoryMaxItems)
	assert.Equal(t, 2222, cfg.SSHPort)
	assert.Nil(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(c *Configuration)
		wantErr string
	}{
		"zero history": {
			mutate:  func(c *Configuration) { c.HistoryMaxItems = 0 },
			wantErr: "history_max_items",
		},
		"bad port": {
			mutate:  func(c *Configuration) { c.SSHPort = 70000 },
			wantErr: "ssh_port",
		},
		"negative rate limit": {
			mutate:  func(c *Configuration) { c.SessionRateLimit = -1 },
			wantErr: "session_rate_limit",
		},
		"blank username": {
			mutate:  func(c *Configuration) { c.Users = []User{{Username: ""}} },
			wantErr: "username",
		},
		"duplicate username": {
			mutate: func(c *Configuration) {
				c.Users = []User{{Username: "a"}, {Username: "a"}}
			},
			wantErr: "users",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestGetPasswords(t *testing.T) {
	cfg := Defaults()
	cfg.Users = []User{
		{Username: "alice", Passwords: []string{"one", "two"}},
		{Username: "bob", Passwords: []string{"three"}},
	}

	assert.Equal(t, []string{"one", "two"}, cfg.GetPasswords("alice"))
	assert.Equal(t, []string{"three"}, cfg.GetPasswords("bob"))
	assert.Nil(t, cfg.GetPasswords("mallory"))
}

func TestSSHAddr(t *testing.T) {
	cfg := Defaults()
	cfg.SSHPort = 2022

	assert.Equal(t, ":2022", cfg.SSHAddr())
}
