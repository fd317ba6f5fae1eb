package engineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidationError는 설정 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validatable is implemented by every engine config.
type validatable interface {
	Validate() error
}

// decodeStrict decodes YAML with unknown-field rejection, then validates.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func decodeStrict(path string, out validatable) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("validate config %s: %w", path, err)
	}

	return nil
}

// LoadAnalysis reads and validates the scoring engine configuration.
func LoadAnalysis(path string) (*AnalysisConfig, error) {
	var cfg AnalysisConfig
	if err := decodeStrict(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadSanity reads and validates the sanity-layer configuration.
func LoadSanity(path string) (*SanityConfig, error) {
	var cfg SanityConfig
	if err := decodeStrict(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEvolution reads and validates the evolution configuration.
func LoadEvolution(path string) (*EvolutionConfig, error) {
	var cfg EvolutionConfig
	if err := decodeStrict(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Hash generates a SHA256 hash of a config (canonical JSON).
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg interface{}) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
