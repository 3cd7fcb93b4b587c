package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TagList is a set of non-sensitive labels attached to a credential.  It is
// persisted as a json document in a text column.
type TagList []string

// GormDataType tells gorm the column type, since Value() returning nil for
// an empty list leaves it unable to infer one.
func (TagList) GormDataType() string {
	return "text"
}

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("store.(TagList).Value: %w", err)
	}
	return string(b), nil
}

func (t *TagList) Scan(value any) error {
	const op = "store.(TagList).Scan"
	if value == nil {
		*t = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("%s: unexpected type %T", op, value)
	}
	if len(b) == 0 {
		*t = nil
		return nil
	}
	if err := json.Unmarshal(b, t); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (t TagList) clone() TagList {
	if t == nil {
		return nil
	}
	c := make(TagList, len(t))
	copy(c, t)
	return c
}
