package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// AttributeMap is a free-form feature map (booleans/numbers keyed by feature
// name) extracted from listing text. It implements sql.Scanner and
// driver.Valuer so it maps directly onto a PostgreSQL JSONB column.
type AttributeMap map[string]any

// Scan implements the sql.Scanner interface.
func (a *AttributeMap) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for AttributeMap")
	}

	if len(data) == 0 {
		*a = AttributeMap{}
		return nil
	}

	return json.Unmarshal(data, a)
}

// Value implements the driver.Valuer interface.
func (a AttributeMap) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}
