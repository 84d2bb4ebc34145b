package sqlitestore

import (
	"encoding/json"

	"github.com/pkg/errors"
)

func encodeAttributes(attributes map[string]interface{}) (string, error) {
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	data, err := json.Marshal(attributes)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode attributes")
	}
	return string(data), nil
}

func decodeAttributes(encoded string) (map[string]interface{}, error) {
	attributes := map[string]interface{}{}
	if err := json.Unmarshal([]byte(encoded), &attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode attributes")
	}
	return attributes, nil
}
