package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// CategoryDelimiter joins event categories into a single column. Category
// values must never contain it; see CategoryList.Validate.
const CategoryDelimiter = ";"

// CategoryList is a custom type storing an ordered set of category strings
// as a single delimiter-joined column while presenting a JSON array to
// clients.
type CategoryList []string

// Value implements driver.Valuer interface for database storage
func (cl CategoryList) Value() (driver.Value, error) {
	if cl == nil {
		return nil, nil
	}
	return strings.Join(cl, CategoryDelimiter), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (cl *CategoryList) Scan(value interface{}) error {
	if value == nil {
		*cl = nil
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into CategoryList", value)
	}

	if raw == "" {
		*cl = CategoryList{}
		return nil
	}
	*cl = CategoryList(strings.Split(raw, CategoryDelimiter))
	return nil
}

// GormDataType returns the data type for GORM
func (CategoryList) GormDataType() string {
	return "text"
}

// MarshalJSON implements json.Marshaler interface
func (cl CategoryList) MarshalJSON() ([]byte, error) {
	if cl == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(cl))
}

// UnmarshalJSON implements json.Unmarshaler interface
func (cl *CategoryList) UnmarshalJSON(data []byte) error {
	var slice []string
	if err := json.Unmarshal(data, &slice); err != nil {
		return err
	}
	*cl = CategoryList(slice)
	return nil
}

// Validate rejects any category containing the storage delimiter. Called
// before persisting; a bad category is a validation error, never silently
// stripped.
func (cl CategoryList) Validate() error {
	for _, category := range cl {
		if strings.Contains(category, CategoryDelimiter) {
			return fmt.Errorf("category %q contains reserved character %q", category, CategoryDelimiter)
		}
	}
	return nil
}
