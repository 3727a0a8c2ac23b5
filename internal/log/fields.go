package log

import "go.uber.org/zap"

const (
	FieldNameCache     = "cache"
	FieldNameComponent = "component"
)

// FieldCache returns a zap field with the cache name.
func FieldCache(name string) zap.Field {
	return zap.String(FieldNameCache, name)
}

// FieldComponent returns a zap field with the component name.
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}
