package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ExportPolicy holds operator-tunable limits for the payment export
// pipeline. Values are display/limit policy only; the record layout itself
// is fixed and not configurable.
type ExportPolicy struct {
	// MaxRecordsPerBatch caps a single clearing-house submission.
	MaxRecordsPerBatch int `mapstructure:"maxRecordsPerBatch"`
	// ArtifactPrefix is the base name for generated batch files.
	ArtifactPrefix string `mapstructure:"artifactPrefix"`
	// ReportLocale is the BCP 47 tag used for report collation and
	// number formatting.
	ReportLocale string `mapstructure:"reportLocale"`
}

func DefaultExportPolicy() ExportPolicy {
	return ExportPolicy{
		MaxRecordsPerBatch: 500,
		ArtifactPrefix:     "payments",
		ReportLocale:       "he",
	}
}

// ExportPolicyHolder exposes the current policy with hot reload.
type ExportPolicyHolder struct {
	current atomic.Value // holds ExportPolicy
}

func NewExportPolicyHolder() (*ExportPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("clearwire")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/clearwire/config")
	v.AddConfigPath("/etc/clearwire")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLEARWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultExportPolicy()
		v.SetDefault("export.maxRecordsPerBatch", defaults.MaxRecordsPerBatch)
		v.SetDefault("export.artifactPrefix", defaults.ArtifactPrefix)
		v.SetDefault("export.reportLocale", defaults.ReportLocale)
	}

	var policy ExportPolicy
	if err := v.UnmarshalKey("export", &policy); err != nil {
		return nil, err
	}
	if err := validateExportPolicy(policy); err != nil {
		return nil, err
	}

	holder := &ExportPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ExportPolicy
		if err := v.UnmarshalKey("export", &updated); err != nil {
			log.Printf("[export-policy] reload failed: %v", err)
			return
		}
		if err := validateExportPolicy(updated); err != nil {
			log.Printf("[export-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[export-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticExportPolicyHolder returns a holder pinned to the given
// policy, with no file watching. Used by tests and one-shot tooling.
func NewStaticExportPolicyHolder(policy ExportPolicy) (*ExportPolicyHolder, error) {
	if err := validateExportPolicy(policy); err != nil {
		return nil, err
	}
	holder := &ExportPolicyHolder{}
	holder.current.Store(policy)
	return holder, nil
}

func (h *ExportPolicyHolder) Get() ExportPolicy {
	return h.current.Load().(ExportPolicy)
}

func validateExportPolicy(p ExportPolicy) error {
	if p.MaxRecordsPerBatch <= 0 {
		return errors.New("export.maxRecordsPerBatch must be positive")
	}
	if strings.TrimSpace(p.ArtifactPrefix) == "" {
		return errors.New("export.artifactPrefix must not be empty")
	}
	if strings.TrimSpace(p.ReportLocale) == "" {
		return errors.New("export.reportLocale must not be empty")
	}
	return nil
}
