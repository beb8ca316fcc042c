package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz          int     `yaml:"tick_rate_hz"`
	ReconcileEveryTicks int     `yaml:"reconcile_every_ticks"`
	SessionEvictRadius  float64 `yaml:"session_evict_radius"`

	// Schema-validate handler responses before they reach the world loop.
	ValidateResponses bool `yaml:"validate_responses"`

	LedgerPath string `yaml:"ledger_path"`
	LogDir     string `yaml:"log_dir"`
	ListenAddr string `yaml:"listen_addr"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickRateHz <= 0 {
		return t, fmt.Errorf("tuning.yaml: tick_rate_hz must be positive")
	}
	if t.ReconcileEveryTicks <= 0 {
		return t, fmt.Errorf("tuning.yaml: reconcile_every_ticks must be positive")
	}
	if t.SessionEvictRadius <= 0 {
		return t, fmt.Errorf("tuning.yaml: session_evict_radius must be positive")
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:     "1.0",
		TickRateHz:          20,
		ReconcileEveryTicks: 5,
		SessionEvictRadius:  10.0,
		ValidateResponses:   true,
		ListenAddr:          ":8080",
	}
}
