package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// RunEvent is the payload published after a completed daily or weekly run.
type RunEvent struct {
	Kind        string    `json:"kind"` // "daily" or "weekly"
	Date        string    `json:"date,omitempty"`
	ISOYear     int       `json:"iso_year,omitempty"`
	ISOWeek     int       `json:"iso_week,omitempty"`
	Records     int       `json:"records"`
	FileCount   int       `json:"file_count,omitempty"`
	OutputPath  string    `json:"output_path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Notifier delivers run events to one configured sink.
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt RunEvent) error
}

// configFile represents the structure of the notifiers configuration file.
type configFile struct {
	Notifiers []SinkConfig `json:"notifiers" yaml:"notifiers"`
}

// SinkConfig is one notifier entry declared in config files.
type SinkConfig struct {
	ID      string           `json:"id" yaml:"id"`
	Type    string           `json:"type" yaml:"type"`
	Enabled *bool            `json:"enabled" yaml:"enabled"`
	Queue   *QueueSinkConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPSinkConfig  `json:"http" yaml:"http"`
}

// QueueSinkConfig selects a cloud queue provider.
type QueueSinkConfig struct {
	Provider string            `json:"provider" yaml:"provider"`
	SQS      *AWSSQSSinkConfig `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSSinkConfig `json:"sns" yaml:"sns"`
	GCP      *GCPSinkConfig    `json:"gcp" yaml:"gcp"`
}

// AWSSQSSinkConfig holds AWS SQS specific settings.
type AWSSQSSinkConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSSinkConfig holds AWS SNS specific settings.
type AWSSNSSinkConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPSinkConfig holds the minimal Pub/Sub topic settings.
type GCPSinkConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPSinkConfig holds generic HTTP sink settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadSinks loads notifier sink configs from a YAML/JSON file with env-var
// expansion. Returns only enabled sinks.
func LoadSinks(path string) ([]SinkConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("notifiers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open notifiers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read notifiers file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	cfg, err := parseSinksFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(cfg.Notifiers) == 0 {
		return nil, errors.New("notifiers file contains no notifiers entries")
	}

	seen := make(map[string]struct{}, len(cfg.Notifiers))
	out := make([]SinkConfig, 0, len(cfg.Notifiers))
	for i := range cfg.Notifiers {
		sink := sanitizeSink(cfg.Notifiers[i])
		if err := validateSink(sink); err != nil {
			return nil, fmt.Errorf("notifiers[%d]: %w", i, err)
		}
		if _, dup := seen[sink.ID]; dup {
			return nil, fmt.Errorf("duplicate notifier id %q", sink.ID)
		}
		seen[sink.ID] = struct{}{}
		if sink.EnabledValue() {
			out = append(out, sink)
		}
	}
	return out, nil
}

// parseSinksFile attempts to decode the notifiers file content.
func parseSinksFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		ext string
		fn  func([]byte, any) error
	}{
		{ext: ".yaml", fn: yaml.Unmarshal},
		{ext: ".yml", fn: yaml.Unmarshal},
		{ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg configFile
		if err := d.fn(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	return configFile{}, errors.New("notifiers file format not recognized (expected YAML or JSON)")
}

// sanitizeSink trims and normalizes a sink config.
func sanitizeSink(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

// validateSink checks that required fields are present.
func validateSink(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for notifier %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQSSink(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNSSink(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCPSink(cfg.ID, cfg.Queue.GCP)
		default:
			return fmt.Errorf("queue provider %q not supported for notifier %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for notifier %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for notifier %q", cfg.ID)
		}
		return nil
	case "":
		return fmt.Errorf("type is required for notifier %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for notifier %q", cfg.Type, cfg.ID)
	}
}

func validateSQSSink(id string, cfg *AWSSQSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for notifier %q", id)
	}
	if cfg.QueueURL == "" {
		return fmt.Errorf("sqs.uri is required for notifier %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sqs.region is required for notifier %q", id)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs credentials are required for notifier %q", id)
	}
	return nil
}

func validateSNSSink(id string, cfg *AWSSNSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for notifier %q", id)
	}
	if cfg.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required for notifier %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sns.region is required for notifier %q", id)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns credentials are required for notifier %q", id)
	}
	return nil
}

func validateGCPSink(id string, cfg *GCPSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for notifier %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for notifier %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for notifier %q", id)
	}
	return nil
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
