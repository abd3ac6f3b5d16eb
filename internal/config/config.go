package config

import (
	"fmt"
	"strings"
	"time"
)

// Mode names an endpoint selection policy.
type Mode string

const (
	ModeRandom     Mode = "random"
	ModeSequential Mode = "sequential"
)

// DefaultEndpoints is the documented default pool, matching the demo bank
// SUT's routes.
var DefaultEndpoints = []string{"/balance", "/delay/100", "/deposit", "/withdraw"}

// DefaultMutating lists the endpoints issued as POST with a JSON body.
var DefaultMutating = []string{"/deposit", "/withdraw"}

type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Total       int           `mapstructure:"total"`
	Repeat      int           `mapstructure:"repeat"`
	Rate        int           `mapstructure:"rate"`
	Endpoints   []string      `mapstructure:"endpoints"`
	Mutating    []string      `mapstructure:"mutating"`
	Mode        Mode          `mapstructure:"mode"`
	Seed        int64         `mapstructure:"seed"`
	Expect      string        `mapstructure:"expect"`
	JSONOutput  bool          `mapstructure:"json_output"`
	JSONFile    string        `mapstructure:"json_file"`
	Dashboard   bool          `mapstructure:"dashboard"`
	LogErrors   bool          `mapstructure:"log_errors"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	Protocol    string  `mapstructure:"protocol"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
	Enable      bool    `mapstructure:"enable"`
}

// Enabled reports whether tracing should be initialized at all.
func (t TracingConfig) Enabled() bool {
	return t.Enable || strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate rejects configurations that must abort before any request is
// dispatched. Per-request failures are never validation concerns; only the
// run parameters are.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Total < 0 {
		issues = append(issues, "total must be >= 0")
	}
	if c.Repeat < 1 {
		issues = append(issues, "repeat must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if len(c.Endpoints) == 0 {
		issues = append(issues, "endpoint pool must not be empty")
	}
	for idx, ep := range c.Endpoints {
		if strings.TrimSpace(ep) == "" {
			issues = append(issues, fmt.Sprintf("endpoints[%d]: identifier must not be blank", idx))
		}
	}

	switch c.Mode {
	case ModeRandom, ModeSequential, "":
	default:
		issues = append(issues, fmt.Sprintf("mode %q is not supported (use random or sequential)", c.Mode))
	}

	if c.Expect != "" {
		if _, _, err := ParseExpect(c.Expect); err != nil {
			issues = append(issues, err.Error())
		}
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// ParseExpect splits an expectation of the form "path" or "path=value".
func ParseExpect(raw string) (path, value string, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "", fmt.Errorf("expect must not be blank")
	}
	parts := strings.SplitN(trimmed, "=", 2)
	path = strings.TrimSpace(parts[0])
	if path == "" {
		return "", "", fmt.Errorf("expect path must not be blank")
	}
	if len(parts) == 2 {
		value = strings.TrimSpace(parts[1])
	}
	return path, value, nil
}
