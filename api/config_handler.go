// Configuration management endpoints.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/logging"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     config.Config `json:"config"`
	ConfigFile string        `json:"config_file"` // path to the active config file
}

// snapshotConfig returns a copy of the running configuration.
func (s *Server) snapshotConfig() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// handleGetConfig returns the running configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.snapshotConfig()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     config.Masked(&cfg),
			ConfigFile: cfg.Path(),
		},
	})
}

// ConfigUpdate is the body for PUT /api/v1/config. Only these fields change
// at runtime; sources, sinks, secrets and the listener are fixed at startup
// and any other field is rejected.
type ConfigUpdate struct {
	Pipeline PipelineUpdate `json:"pipeline"`
	Ratio    RatioUpdate    `json:"ratio"`
	Sink     SinkUpdate     `json:"sink"`
	Logging  LoggingUpdate  `json:"logging"`
}

// PipelineUpdate holds the mutable pipeline fields.
type PipelineUpdate struct {
	Company string `json:"company"`
	Year    int    `json:"year"`
}

// RatioUpdate holds the mutable ratio engine fields.
type RatioUpdate struct {
	StrictSchema *bool `json:"strict_schema"`
}

// SinkUpdate holds the mutable sink fields.
type SinkUpdate struct {
	Mode string `json:"mode"`
}

// LoggingUpdate holds the mutable logging fields.
type LoggingUpdate struct {
	Level string `json:"level"`
}

// handleUpdateConfig merges the update into the running config, validates
// it, persists it to disk and returns the result.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming ConfigUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config update: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := *s.cfg
	mergeConfig(&merged, &incoming)
	if err := merged.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfgPath := merged.Path()
	if s.persistConfig {
		if err := config.SaveToFile(&merged, cfgPath); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
			return
		}
	}
	*s.cfg = merged
	if incoming.Logging.Level != "" {
		logging.SetLevel(merged.Logging.Level)
	}
	s.log.Info().Str("file", cfgPath).Bool("saved", s.persistConfig).Msg("configuration updated")

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     config.Masked(&merged),
			ConfigFile: cfgPath,
		},
	})
}

// handleGetConfigKeys returns the status of all credentials.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	cfg := s.snapshotConfig()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckCredentials(&cfg),
	})
}

// mergeConfig copies the non-empty fields of src into dst.
func mergeConfig(dst *config.Config, src *ConfigUpdate) {
	if src.Pipeline.Company != "" {
		dst.Pipeline.Company = src.Pipeline.Company
	}
	if src.Pipeline.Year != 0 {
		dst.Pipeline.Year = src.Pipeline.Year
	}
	if src.Ratio.StrictSchema != nil {
		dst.Ratio.StrictSchema = *src.Ratio.StrictSchema
	}
	if src.Sink.Mode != "" {
		dst.Sink.Mode = src.Sink.Mode
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
}
