// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"reflect"

	"github.com/pkg/errors"
)

// Value is anything but nil.
type Value interface{}

// Container is the set of operations shared by Cuckoo and Locked.
type Container interface {
	Get(key string) (Value, bool)
	Set(key string, val Value) (bool, error)
	Delete(key string) (Value, bool)
	Len() int
	Cap() int
	Load() float64
}

var (
	_ Container = (*Cuckoo)(nil)
	_ Container = (*Locked)(nil)
)

// KeyOf converts a dynamically typed key to a string key. Strings, byte
// slices and types whose underlying type is string are keys, nothing else is.
func KeyOf(key interface{}) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case []byte:
		return string(k), nil
	case nil:
		return "", errors.Wrap(ErrInvalidKey, "nil")
	}
	v := reflect.ValueOf(key)
	if v.Kind() == reflect.String {
		return v.String(), nil
	}
	return "", errors.Wrapf(ErrInvalidKey, "%T", key)
}

// Insert is Set for a dynamically typed key.
func (c *Cuckoo) Insert(key interface{}, val Value) (bool, error) {
	k, err := KeyOf(key)
	if err != nil {
		return false, err
	}
	return c.Set(k, val)
}

// Lookup is Get for a dynamically typed key.
func (c *Cuckoo) Lookup(key interface{}) (Value, bool, error) {
	k, err := KeyOf(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.Get(k)
	return v, ok, nil
}

// Remove is Delete for a dynamically typed key.
func (c *Cuckoo) Remove(key interface{}) (Value, bool, error) {
	k, err := KeyOf(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.Delete(k)
	return v, ok, nil
}
