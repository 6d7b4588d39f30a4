package config

import "os"

// CredentialSource represents where a credential comes from.
type CredentialSource string

const (
	CredentialSourceEnv    CredentialSource = "env"
	CredentialSourceConfig CredentialSource = "config"
	CredentialSourceNone   CredentialSource = "none"
)

// CredentialStatus represents the status of a secret or credential setting.
type CredentialStatus struct {
	Name   string           `json:"name"`
	Source CredentialSource `json:"source"`
	IsSet  bool             `json:"is_set"`
	Masked string           `json:"masked,omitempty"` // e.g., "pos...db1"
}

// CheckCredentials returns the status of every secret the sinks and sources use.
func CheckCredentials(cfg *Config) []CredentialStatus {
	return []CredentialStatus{
		checkCredential("Postgres DSN", cfg.Sink.PostgresDSN, EnvPrefix+"_SINK_POSTGRES_DSN", "DATABASE_URL"),
		checkCredential("BigQuery Credentials File", cfg.Sink.BigQuery.CredentialsFile,
			EnvPrefix+"_SINK_BIGQUERY_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"),
		checkCredential("GCS Credentials File", cfg.Source.GCSCredentialsFile,
			EnvPrefix+"_SOURCE_GCS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

// checkCredential checks if a value is set and whether one of envVars supplied it.
func checkCredential(name, value string, envVars ...string) CredentialStatus {
	status := CredentialStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value == "" {
		status.Source = CredentialSourceNone
		return status
	}

	status.Source = CredentialSourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = CredentialSourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// Masked returns a copy of cfg with secrets masked, safe to print or serve.
func Masked(cfg *Config) Config {
	out := *cfg
	if out.Sink.PostgresDSN != "" {
		out.Sink.PostgresDSN = maskKey(out.Sink.PostgresDSN)
	}
	out.Pipeline.Statements = make(map[string]string, len(cfg.Pipeline.Statements))
	for k, v := range cfg.Pipeline.Statements {
		out.Pipeline.Statements[k] = v
	}
	return out
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
