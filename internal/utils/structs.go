package utils

import (
	"reflect"
)

// ColumnTag is the struct tag read for column names.
var ColumnTag = "db"

// StructTagValues lists the column tags of input in field order, skipping
// untagged, "-" and unexported fields. Panics if input is not a struct.
func StructTagValues(input any) []string {
	var result []string
	eachColumn(input, func(column string, _ reflect.Value) {
		result = append(result, column)
	})
	return result
}

// StructToMap keys every tagged field of input by its column name.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	eachColumn(input, func(column string, v reflect.Value) {
		result[column] = v.Interface()
	})
	return result
}

func eachColumn(input any, fn func(column string, v reflect.Value)) {
	value := reflect.ValueOf(input)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	typ := value.Type()
	for i := range value.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fn(column, value.Field(i))
	}
}
