package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAppEnv = "dev"

// Source resolves configuration keys from the process environment first
// and from dotenv files second. Loading never writes to the process
// environment.
type Source struct {
	files  map[string]string
	lookup func(string) (string, bool)
	loaded []string
}

type Options struct {
	// Files are read in order, later files override earlier ones. When
	// empty, ".env" and ".env.<APP_ENV>" are used.
	Files []string
	// Lookup replaces os.LookupEnv, mostly for tests.
	Lookup func(string) (string, bool)
}

func Load(opts Options) (*Source, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	files := opts.Files
	if len(files) == 0 {
		appEnv, ok := lookup("APP_ENV")
		if !ok || appEnv == "" {
			appEnv = defaultAppEnv
		}
		files = []string{".env", fmt.Sprintf(".env.%s", appEnv)}
	}

	s := &Source{
		files:  make(map[string]string),
		lookup: lookup,
	}

	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range values {
			s.files[k] = v
		}
		s.loaded = append(s.loaded, f)
	}

	return s, nil
}

// FromMap builds a Source with no process environment behind it.
func FromMap(values map[string]string) *Source {
	files := make(map[string]string, len(values))
	for k, v := range values {
		files[k] = v
	}
	return &Source{
		files:  files,
		lookup: func(string) (string, bool) { return "", false },
	}
}

// LoadedFiles lists the dotenv files that were found and read.
func (s *Source) LoadedFiles() []string {
	return append([]string(nil), s.loaded...)
}

func (s *Source) Lookup(key string) (string, bool) {
	if v, ok := s.lookup(key); ok && v != "" {
		return v, true
	}
	v, ok := s.files[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Source) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

func (s *Source) Require(key string) (string, error) {
	v, ok := s.Lookup(key)
	if !ok {
		return "", fmt.Errorf("env %s is missing", key)
	}
	return v, nil
}

func (s *Source) GetString(key, defaultValue string) string {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return defaultValue
}

func (s *Source) GetBool(key string, defaultValue bool) bool {
	val, ok := s.Lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *Source) GetInt(key string, defaultValue int) int {
	val, ok := s.Lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *Source) GetFloat(key string, defaultValue float64) float64 {
	val, ok := s.Lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *Source) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val, ok := s.Lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetList splits a comma separated value, dropping empty items.
func (s *Source) GetList(key string, defaultValue []string) []string {
	val, ok := s.Lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
