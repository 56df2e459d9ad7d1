// Package config implements the validated configuration of a training
// run. Configurations are read from YAML or JSON files with viper;
// unknown keys and missing required keys are rejected at load time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/gops/expreplay"
)

// Filename is the name of the configuration snapshot written into a
// save folder
const Filename = "config.yaml"

// Config is the flat configuration of a training run
type Config struct {
	EnvID         string `mapstructure:"env_id" yaml:"env_id"`
	Algorithm     string `mapstructure:"algorithm" yaml:"algorithm"`
	Trainer       string `mapstructure:"trainer" yaml:"trainer"`
	Seed          uint64 `mapstructure:"seed" yaml:"seed"`
	SaveFolder    string `mapstructure:"save_folder" yaml:"save_folder"`
	IniNetworkDir string `mapstructure:"ini_network_dir" yaml:"ini_network_dir"`
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	ProgressBar   bool   `mapstructure:"progress_bar" yaml:"progress_bar"`

	// Environment
	MaxEpisodeSteps int     `mapstructure:"max_episode_steps" yaml:"max_episode_steps"`
	RewardScale     float64 `mapstructure:"reward_scale" yaml:"reward_scale"`
	RewardShift     float64 `mapstructure:"reward_shift" yaml:"reward_shift"`

	// Approximator
	PolicyDegree       int     `mapstructure:"policy_degree" yaml:"policy_degree"`
	ValueDegree        int     `mapstructure:"value_degree" yaml:"value_degree"`
	PolicyLearningRate float64 `mapstructure:"policy_learning_rate" yaml:"policy_learning_rate"`
	ValueLearningRate  float64 `mapstructure:"value_learning_rate" yaml:"value_learning_rate"`
	Gamma              float64 `mapstructure:"gamma" yaml:"gamma"`
	Tau                float64 `mapstructure:"tau" yaml:"tau"`
	DelayUpdate        int     `mapstructure:"delay_update" yaml:"delay_update"`
	Optimizer          string  `mapstructure:"optimizer" yaml:"optimizer"`
	InitStd            float64 `mapstructure:"init_std" yaml:"init_std"`
	GradClip           float64 `mapstructure:"grad_clip" yaml:"grad_clip"`

	// Buffer
	BufferName      string  `mapstructure:"buffer_name" yaml:"buffer_name"`
	BufferMaxSize   int     `mapstructure:"buffer_max_size" yaml:"buffer_max_size"`
	BufferWarmSize  int     `mapstructure:"buffer_warm_size" yaml:"buffer_warm_size"`
	ReplayBatchSize int     `mapstructure:"replay_batch_size" yaml:"replay_batch_size"`
	PriorityAlpha   float64 `mapstructure:"priority_alpha" yaml:"priority_alpha"`
	PriorityBeta    float64 `mapstructure:"priority_beta" yaml:"priority_beta"`
	PriorityEpsilon float64 `mapstructure:"priority_epsilon" yaml:"priority_epsilon"`

	// Sampler
	SampleInterval  int     `mapstructure:"sample_interval" yaml:"sample_interval"`
	SampleBatchSize int     `mapstructure:"sample_batch_size" yaml:"sample_batch_size"`
	NumSamplers     int     `mapstructure:"num_samplers" yaml:"num_samplers"`
	NoiseType       string  `mapstructure:"noise_type" yaml:"noise_type"`
	NoiseStd        float64 `mapstructure:"noise_std" yaml:"noise_std"`
	NoiseDecay      float64 `mapstructure:"noise_decay" yaml:"noise_decay"`
	NoiseMinStd     float64 `mapstructure:"noise_min_std" yaml:"noise_min_std"`

	// Trainer
	MaxIteration         int `mapstructure:"max_iteration" yaml:"max_iteration"`
	ApprfuncSaveInterval int `mapstructure:"apprfunc_save_interval" yaml:"apprfunc_save_interval"`
	LogSaveInterval      int `mapstructure:"log_save_interval" yaml:"log_save_interval"`

	// Evaluator
	NumEvalEpisode int  `mapstructure:"num_eval_episode" yaml:"num_eval_episode"`
	EvalInterval   int  `mapstructure:"eval_interval" yaml:"eval_interval"`
	EvalSave       bool `mapstructure:"eval_save" yaml:"eval_save"`
}

// Required lists the keys which must be present in every
// configuration
var Required = []string{
	"env_id",
	"algorithm",
	"trainer",
	"buffer_max_size",
	"buffer_warm_size",
	"replay_batch_size",
	"sample_interval",
	"sample_batch_size",
	"max_iteration",
	"eval_interval",
	"apprfunc_save_interval",
	"log_save_interval",
}

// defaults holds the values of optional keys
var defaults = map[string]interface{}{
	"seed":            12345,
	"save_folder":     "",
	"ini_network_dir": "",
	"log_level":       "info",
	"progress_bar":    false,

	"max_episode_steps": 200,
	"reward_scale":      1.0,
	"reward_shift":      0.0,

	"policy_degree":        4,
	"value_degree":         2,
	"policy_learning_rate": 1e-3,
	"value_learning_rate":  1e-3,
	"gamma":                0.99,
	"tau":                  0.005,
	"delay_update":         1,
	"optimizer":            "Vanilla",
	"init_std":             0.0,
	"grad_clip":            0.0,

	"buffer_name":      "replay_buffer",
	"priority_alpha":   0.6,
	"priority_beta":    0.4,
	"priority_epsilon": 1e-6,

	"num_samplers":  2,
	"noise_type":    "normal",
	"noise_std":     0.1,
	"noise_decay":   1.0,
	"noise_min_std": 0.0,

	"num_eval_episode": 5,
	"eval_save":        false,
}

// Load reads the configuration file at path. Values in overrides take
// precedence over the file.
func Load(path string, overrides map[string]interface{}) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	if err := vp.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "load: could not read %v", path)
	}

	return fromViper(vp, overrides)
}

func fromViper(vp *viper.Viper, overrides map[string]interface{}) (Config,
	error) {
	var missing []string
	for _, key := range Required {
		if !vp.IsSet(key) {
			if _, ok := overrides[key]; !ok {
				missing = append(missing, key)
			}
		}
	}
	if len(missing) > 0 {
		return Config{}, &MissingKeysError{Keys: missing}
	}

	for key, value := range defaults {
		vp.SetDefault(key, value)
	}
	for key, value := range overrides {
		vp.Set(key, value)
	}

	var c Config
	if err := vp.UnmarshalExact(&c); err != nil {
		return Config{}, errors.Wrap(err, "load: invalid configuration")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns a Config holding the default values of all optional
// keys. Required keys are left at their zero values.
func Default() Config {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}

	var c Config
	if err := vp.Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("default: invalid defaults: %v", err))
	}
	return c
}

// MissingKeysError reports required keys absent from a configuration
type MissingKeysError struct {
	Keys []string
}

func (m *MissingKeysError) Error() string {
	keys := append([]string(nil), m.Keys...)
	sort.Strings(keys)
	return fmt.Sprintf("load: missing required keys %v", keys)
}

// Validate returns an error describing whether the Config is valid
func (c Config) Validate() error {
	positive := []struct {
		key   string
		value int
	}{
		{"buffer_max_size", c.BufferMaxSize},
		{"buffer_warm_size", c.BufferWarmSize},
		{"replay_batch_size", c.ReplayBatchSize},
		{"sample_interval", c.SampleInterval},
		{"sample_batch_size", c.SampleBatchSize},
		{"max_iteration", c.MaxIteration},
		{"eval_interval", c.EvalInterval},
		{"apprfunc_save_interval", c.ApprfuncSaveInterval},
		{"log_save_interval", c.LogSaveInterval},
		{"num_eval_episode", c.NumEvalEpisode},
		{"num_samplers", c.NumSamplers},
		{"max_episode_steps", c.MaxEpisodeSteps},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("validate: %v must be >= 1, have %v", p.key,
				p.value)
		}
	}

	if c.BufferWarmSize > c.BufferMaxSize {
		return fmt.Errorf("validate: buffer_warm_size (%v) exceeds "+
			"buffer_max_size (%v)", c.BufferWarmSize, c.BufferMaxSize)
	}
	if c.RewardScale == 0 {
		return fmt.Errorf("validate: reward_scale must be non-zero")
	}

	if expreplay.Type(c.BufferName) == expreplay.Prioritized {
		if c.PriorityEpsilon <= 0 {
			return fmt.Errorf("validate: priority_epsilon must be positive")
		}
		if c.PriorityAlpha < 0 {
			return fmt.Errorf("validate: priority_alpha must be non-negative")
		}
		if c.PriorityBeta < 0 || c.PriorityBeta > 1 {
			return fmt.Errorf("validate: priority_beta must be in [0, 1]")
		}
	}
	return nil
}

// Save writes the configuration as YAML into dir
func (c Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "save")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "save")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(dir, Filename), data,
		0o644), "save")
}
