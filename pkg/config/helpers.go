package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/repodash/pkg/errors"
)

// Keys lists every key accepted by GetValue and SetValue.
func Keys() []string {
	keys := make([]string, 0, 16)
	for k := range DefaultConfig().ToMap() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a configuration value by its dotted key, for example
// "search.per_page" or "cache.ttl". The result is validated before it is kept.
func (c *Config) SetValue(key, value string) error {
	next := *c
	var err error
	switch key {
	case "api.base_url":
		next.API.BaseURL = strings.TrimRight(value, "/")
	case "api.token":
		next.API.Token = value
	case "api.username":
		next.API.Username = value
	case "api.http_timeout":
		next.API.HTTPTimeout, err = parseDuration(key, value)
	case "search.per_page":
		next.Search.PerPage, err = parseInt(key, value)
	case "search.trending_days":
		next.Search.TrendingDays, err = parseInt(key, value)
	case "search.trending_concurrency":
		next.Search.TrendingConcurrency, err = parseInt(key, value)
	case "cache.enabled":
		next.Cache.Enabled, err = parseBool(key, value)
	case "cache.ttl":
		next.Cache.TTL, err = parseDuration(key, value)
	case "snapshot.enabled":
		next.Snapshot.Enabled, err = parseBool(key, value)
	case "snapshot.source":
		next.Snapshot.Source = value
	case "snapshot.max_age_days":
		next.Snapshot.MaxAgeDays, err = parseInt(key, value)
	case "settings.log_level":
		next.Settings.LogLevel = strings.ToLower(value)
	case "settings.state_dir":
		next.Settings.StateDir = value
	case "settings.output_format":
		next.Settings.OutputFormat = value
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}
	*c = next
	return nil
}

// GetValue returns a configuration value by its dotted key.
func (c *Config) GetValue(key string) (string, error) {
	v, ok := c.ToMap()[key]
	if !ok {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return v, nil
}

// ToMap flattens the scalar settings into dotted keys for display. Maps such
// as api.headers are only editable in the file.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	root := reflect.ValueOf(*c)
	rootType := root.Type()
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		if section.Kind() != reflect.Struct {
			continue
		}
		prefix := yamlKey(rootType.Field(i))
		if prefix == "" {
			continue
		}
		sectionType := section.Type()
		for j := 0; j < section.NumField(); j++ {
			key := yamlKey(sectionType.Field(j))
			if key == "" || section.Field(j).Kind() == reflect.Map {
				continue
			}
			result[prefix+"."+key] = formatValue(section.Field(j))
		}
	}

	return result
}

func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	// Handle yaml tags with options (e.g., "state_dir,omitempty")
	return strings.Split(tag, ",")[0]
}

func formatValue(v reflect.Value) string {
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w for %s: %s", errors.ErrInvalidBoolValue, key, value)
	}
	return b, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %s", errors.ErrInvalidIntValue, key, value)
	}
	return n, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %s", errors.ErrInvalidDuration, key, value)
	}
	return d, nil
}
