// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread attribute defaults loaded from a config file and the environment.

package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/momentics/hiothread/affinity"
	"github.com/momentics/hiothread/api"
)

// EnvPrefix prefixes environment overrides, e.g. HIOTHREAD_PRIORITY=above.
const EnvPrefix = "HIOTHREAD"

// AttributesConfig is the raw, file-level form of api.Attributes.
type AttributesConfig struct {
	StackSize int    `mapstructure:"stack_size"`
	Priority  string `mapstructure:"priority"`
	Affinity  string `mapstructure:"affinity"`
	Name      string `mapstructure:"name"`
}

var priorityNames = map[string]int{
	"lowest":  api.PriorityLowest,
	"below":   api.PriorityBelow,
	"normal":  api.PriorityNormal,
	"above":   api.PriorityAbove,
	"highest": api.PriorityHighest,
}

// LoadAttributes reads attributes from configPath (optional) and HIOTHREAD_*
// environment variables on top of api.DefaultAttributes.
func LoadAttributes(configPath string) (api.Attributes, error) {
	v := viper.New()
	def := api.DefaultAttributes()
	v.SetDefault("stack_size", def.StackSize)
	v.SetDefault("priority", strconv.Itoa(def.Priority))
	v.SetDefault("affinity", "all")
	v.SetDefault("name", def.Name)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return api.Attributes{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var raw AttributesConfig
	if err := v.Unmarshal(&raw); err != nil {
		return api.Attributes{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return raw.Attributes()
}

// Attributes converts the raw form, resolving priority names and affinity lists.
func (c AttributesConfig) Attributes() (api.Attributes, error) {
	prio, err := ParsePriority(c.Priority)
	if err != nil {
		return api.Attributes{}, err
	}
	mask, err := affinity.Parse(c.Affinity)
	if err != nil {
		return api.Attributes{}, err
	}
	if c.StackSize < 0 {
		return api.Attributes{}, fmt.Errorf("stack_size must not be negative, got %d", c.StackSize)
	}
	return api.Attributes{
		StackSize: c.StackSize,
		Priority:  prio,
		Affinity:  mask,
		Name:      c.Name,
	}, nil
}

// ParsePriority accepts a bucket name or an integer. Integers outside 0..255
// are passed through; the backend adapter clamps them.
func ParsePriority(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return api.PriorityNormal, nil
	}
	if p, ok := priorityNames[s]; ok {
		return p, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad priority %q", s)
	}
	return p, nil
}
