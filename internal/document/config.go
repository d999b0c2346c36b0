package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

// IndexConfig names the indexed fields (in FieldId order), the fields kept
// verbatim, and the property holding the external id.
type IndexConfig struct {
	Fields       []string
	StoredFields []string
	IDField      string
}

// rawIndexConfig uses pointers so a missing key can be told apart from an
// empty list. storeFields is accepted as an alias of storedFields.
type rawIndexConfig struct {
	Fields       *[]string `json:"fields"`
	StoredFields *[]string `json:"storedFields"`
	StoreFields  *[]string `json:"storeFields"`
	IDField      *string   `json:"idField"`
}

// ParseIndexConfig decodes and validates a JSON index configuration.
func ParseIndexConfig(data []byte) (IndexConfig, error) {
	var raw rawIndexConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return IndexConfig{}, &apperrors.ConfigurationError{
				Key:    typeErr.Field,
				Reason: fmt.Sprintf("must be %s, got %s", describeType(typeErr.Field), typeErr.Value),
			}
		}
		return IndexConfig{}, &apperrors.ConfigurationError{Key: "", Reason: fmt.Sprintf("config is not a JSON object: %v", err)}
	}

	if raw.StoredFields != nil && raw.StoreFields != nil {
		return IndexConfig{}, &apperrors.ConfigurationError{
			Key:    "storedFields",
			Reason: "must not be given together with storeFields",
		}
	}
	if raw.StoredFields == nil {
		raw.StoredFields = raw.StoreFields
	}

	cfg := IndexConfig{IDField: DefaultIDField}
	if raw.Fields == nil {
		return IndexConfig{}, &apperrors.ConfigurationError{Key: "fields", Reason: "is required"}
	}
	cfg.Fields = *raw.Fields
	if raw.StoredFields == nil {
		return IndexConfig{}, &apperrors.ConfigurationError{Key: "storedFields", Reason: "is required"}
	}
	cfg.StoredFields = *raw.StoredFields
	if raw.IDField != nil {
		cfg.IDField = *raw.IDField
	}
	if err := cfg.Validate(); err != nil {
		return IndexConfig{}, err
	}
	return cfg, nil
}

// LoadIndexConfig reads and validates the configuration file at path.
func LoadIndexConfig(path string) (IndexConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IndexConfig{}, fmt.Errorf("reading index config %s: %w", path, err)
	}
	cfg, err := ParseIndexConfig(data)
	if err != nil {
		return IndexConfig{}, fmt.Errorf("parsing index config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field lists for blank and repeated names.
func (c IndexConfig) Validate() error {
	if len(c.Fields) == 0 {
		return &apperrors.ConfigurationError{Key: "fields", Reason: "must name at least one field"}
	}
	if err := checkNames("fields", c.Fields); err != nil {
		return err
	}
	if err := checkNames("storedFields", c.StoredFields); err != nil {
		return err
	}
	if strings.TrimSpace(c.IDField) == "" {
		return &apperrors.ConfigurationError{Key: "idField", Reason: "must not be blank"}
	}
	return nil
}

func checkNames(key string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return &apperrors.ConfigurationError{Key: key, Reason: fmt.Sprintf("entry %d is blank", i)}
		}
		if _, dup := seen[name]; dup {
			return &apperrors.ConfigurationError{Key: key, Reason: fmt.Sprintf("repeats %q", name)}
		}
		seen[name] = struct{}{}
	}
	return nil
}

func describeType(field string) string {
	if field == "idField" {
		return "a string"
	}
	return "an array of strings"
}
