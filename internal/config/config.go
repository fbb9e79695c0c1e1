package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/environmint/envmint/internal/branding"
	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/platform"
	"github.com/environmint/envmint/internal/shell"
)

const fileType = "yaml"

// Setting keys.
const (
	KeyScanTargets        = "scan_targets"
	KeyAutoScanOnStartup  = "auto_scan_on_startup"
	KeyDefaultScriptLang  = "default_script_language"
	KeyRespectGitignore   = "respect_gitignore"
	KeyProbeTimeout       = "probe_timeout"
	KeyProbeConcurrency   = "probe_concurrency"
	KeyScanConcurrency    = "scan_concurrency"
	KeyDefaultEnvironment = "default_environment_name"
)

// Settings is the decoded settings file.
type Settings struct {
	ScanTargets           []string      `mapstructure:"scan_targets"`
	AutoScanOnStartup     bool          `mapstructure:"auto_scan_on_startup"`
	DefaultScriptLanguage string        `mapstructure:"default_script_language"`
	RespectGitignore      bool          `mapstructure:"respect_gitignore"`
	ProbeTimeout          time.Duration `mapstructure:"probe_timeout"`
	ProbeConcurrency      int           `mapstructure:"probe_concurrency"`
	ScanConcurrency       int           `mapstructure:"scan_concurrency"`
	DefaultEnvironment    string        `mapstructure:"default_environment_name"`
}

// Dialect returns the parsed default script language.
func (s Settings) Dialect() shell.Dialect {
	d, err := shell.ParseDialect(s.DefaultScriptLanguage)
	if err != nil {
		return shell.Default()
	}
	return d
}

// Validate rejects values the engine cannot work with.
func (s Settings) Validate() error {
	var errs []error
	if _, err := shell.ParseDialect(s.DefaultScriptLanguage); err != nil {
		errs = append(errs, err)
	}
	if s.ProbeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyProbeTimeout, s.ProbeTimeout))
	}
	if s.ProbeConcurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyProbeConcurrency, s.ProbeConcurrency))
	}
	if s.ScanConcurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyScanConcurrency, s.ScanConcurrency))
	}
	return errors.Join(errs...)
}

// DefaultScanTargets returns the per-OS directories searched for tools.
func DefaultScanTargets() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{`C:\Program Files`, `C:\Program Files (x86)`, `C:\Users`}
	case "darwin":
		return []string{"/Applications", "/usr/local", "/opt"}
	default:
		return []string{"/usr/local", "/opt"}
	}
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		ScanTargets:           DefaultScanTargets(),
		AutoScanOnStartup:     false,
		DefaultScriptLanguage: string(shell.Default()),
		RespectGitignore:      false,
		ProbeTimeout:          30 * time.Second,
		ProbeConcurrency:      4,
		ScanConcurrency:       8,
		DefaultEnvironment:    "DevEnvironment",
	}
}

// Store wraps a private viper instance bound to one settings file. The
// instance holds file values over defaults only; ENVMINT_* environment
// overrides are layered on at read time and never saved.
type Store struct {
	path string
	file *viper.Viper
	log  *clog.Logger
}

// New returns a Store for path. Nothing is read until Load.
func New(path string, logger *clog.Logger) *Store {
	return &Store{path: path, file: newViper(path), log: logging.OrDiscard(logger).With("settings", path)}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	setDefaults(v, Defaults())
	return v
}

// withEnv returns a viper instance that answers from the environment first
// and from the file values second.
func (s *Store) withEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range Keys() {
		v.SetDefault(k, s.file.Get(k))
	}
	return v
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault(KeyScanTargets, d.ScanTargets)
	v.SetDefault(KeyAutoScanOnStartup, d.AutoScanOnStartup)
	v.SetDefault(KeyDefaultScriptLang, d.DefaultScriptLanguage)
	v.SetDefault(KeyRespectGitignore, d.RespectGitignore)
	v.SetDefault(KeyProbeTimeout, d.ProbeTimeout)
	v.SetDefault(KeyProbeConcurrency, d.ProbeConcurrency)
	v.SetDefault(KeyScanConcurrency, d.ScanConcurrency)
	v.SetDefault(KeyDefaultEnvironment, d.DefaultEnvironment)
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Load reads the settings file and applies environment overrides. A
// missing file yields defaults. A corrupt file, or one holding values that
// fail Validate, is replaced by the defaults, which are written back
// immediately. Invalid environment overrides are ignored with a warning
// and never touch the file.
func (s *Store) Load() (Settings, error) {
	err := s.file.ReadInConfig()
	if err == nil {
		settings, derr := decode(s.file)
		if derr == nil {
			derr = settings.Validate()
		}
		if derr != nil {
			s.log.Warn("settings unusable, restoring defaults", "err", derr)
			if err := s.reset(); err != nil {
				return Settings{}, err
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) && !isNotFound(err) {
		s.log.Warn("settings unusable, restoring defaults", "err", err)
		if err := s.reset(); err != nil {
			return Settings{}, err
		}
	}
	return s.effective()
}

// effective decodes the file values with environment overrides applied,
// falling back to the file values when the overrides do not validate.
func (s *Store) effective() (Settings, error) {
	fileSettings, err := decode(s.file)
	if err != nil {
		return Settings{}, err
	}
	settings, err := decode(s.withEnv())
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		s.log.Warn("ignoring invalid environment overrides", "prefix", branding.EnvPrefix()+"_", "err", err)
		return fileSettings, nil
	}
	return settings, nil
}

func decode(v *viper.Viper) (Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}

// reset discards file values and persists defaults.
func (s *Store) reset() error {
	s.file = newViper(s.path)
	return s.Save()
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// Get returns a setting, environment overrides included, rendered as a
// string. Lists are comma-joined.
func (s *Store) Get(key string) string {
	val := s.withEnv().Get(key)
	switch v := val.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ",")
	case []interface{}:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Set parses value for key, validates the file values with it and saves
// the file. List-valued keys take comma-separated values. Environment
// overrides play no part.
func (s *Store) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isKnownKey(key) {
		return fmt.Errorf("unknown setting %q: valid keys are %s", key, strings.Join(Keys(), ", "))
	}

	parsed, err := parseValue(key, value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	prev := s.file.Get(key)
	s.file.Set(key, parsed)

	settings, err := decode(s.file)
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		s.file.Set(key, prev)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return s.Save()
}

func parseValue(key, value string) (interface{}, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyScanTargets:
		var targets []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				targets = append(targets, p)
			}
		}
		return targets, nil
	case KeyAutoScanOnStartup, KeyRespectGitignore:
		return strconv.ParseBool(value)
	case KeyProbeConcurrency, KeyScanConcurrency:
		return strconv.Atoi(value)
	case KeyProbeTimeout:
		return time.ParseDuration(value)
	case KeyDefaultScriptLang:
		d, err := shell.ParseDialect(value)
		return string(d), err
	default:
		return value, nil
	}
}

// Save writes every file setting, including defaults, to the file.
// Environment overrides are not written.
func (s *Store) Save() error {
	v := s.file
	out := make(map[string]interface{}, len(Keys()))
	for _, k := range Keys() {
		out[k] = v.Get(k)
	}
	// Durations are stored in their readable form.
	out[KeyProbeTimeout] = v.GetDuration(KeyProbeTimeout).String()
	out[KeyScanTargets] = v.GetStringSlice(KeyScanTargets)
	out[KeyProbeConcurrency] = v.GetInt(KeyProbeConcurrency)
	out[KeyScanConcurrency] = v.GetInt(KeyScanConcurrency)
	out[KeyAutoScanOnStartup] = v.GetBool(KeyAutoScanOnStartup)
	out[KeyRespectGitignore] = v.GetBool(KeyRespectGitignore)

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := platform.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// All returns every key and its rendered value.
func (s *Store) All() map[string]string {
	out := make(map[string]string)
	for _, k := range Keys() {
		out[k] = s.Get(k)
	}
	return out
}

// Keys returns the known setting keys in sorted order.
func Keys() []string {
	keys := []string{
		KeyScanTargets,
		KeyAutoScanOnStartup,
		KeyDefaultScriptLang,
		KeyRespectGitignore,
		KeyProbeTimeout,
		KeyProbeConcurrency,
		KeyScanConcurrency,
		KeyDefaultEnvironment,
	}
	sort.Strings(keys)
	return keys
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
