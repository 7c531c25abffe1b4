// SPDX-License-Identifier: Apache-2.0

package util

import (
	"fmt"
	"reflect"
	"strings"

	multierr "github.com/hashicorp/go-multierror"
)

// Validator accumulates validation errors across a sequence of checks so a
// config loader can report every problem in one pass instead of failing on
// the first.
type Validator struct {
	Error error
}

// MustNotBeEmpty checks whether value is empty and returns false if it is
// empty or nil, appending a descriptive error in that case.
func (v *Validator) MustNotBeEmpty(key string, value interface{}) bool {
	if value == nil {
		v.Error = multierr.Append(v.Error, fmt.Errorf("%s must not be nil or empty", key))
		return false
	}
	cv := reflect.ValueOf(value)
	switch cv.Kind() {
	case reflect.String:
		if strings.TrimSpace(cv.String()) == "" {
			v.Error = multierr.Append(v.Error, fmt.Errorf("value for key %s must not be empty", key))
			return false
		}
	case reflect.Slice:
		if cv.Len() == 0 {
			v.Error = multierr.Append(v.Error, fmt.Errorf("value for key %s must not be empty", key))
			return false
		}
	case reflect.Map:
		if cv.Len() == 0 {
			v.Error = multierr.Append(v.Error, fmt.Errorf("value for key %s must not be empty", key))
			return false
		}
	default:
		v.Error = multierr.Append(v.Error, fmt.Errorf("unsupported type of value for key %s, do not know how to check if it is empty", key))
		return false
	}
	return true
}

// MustBeInRange checks that value lies within [min, max], appending a
// descriptive error otherwise. Used to validate target indices against the
// 0..0xffff range.
func (v *Validator) MustBeInRange(key string, value, min, max int) bool {
	if value < min || value > max {
		v.Error = multierr.Append(v.Error, fmt.Errorf("value %d for key %s must be in range [%d, %d]", value, key, min, max))
		return false
	}
	return true
}
