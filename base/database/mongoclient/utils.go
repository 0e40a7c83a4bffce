package mongoclient

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// MakeBsonM turns the set fields of a filter struct into an equality query.
// Zero values are never matched on; pointers are matched on what they
// point to so a *bool can ask for false.
func MakeBsonM(filter interface{}) (bson.M, error) {
	v := reflect.Indirect(reflect.ValueOf(filter))
	t := v.Type()

	m := bson.M{}
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(sf)
		if err != nil {
			return nil, err
		}
		f := v.Field(i)
		if tag.Skip || f.IsZero() {
			continue
		}
		if f.Kind() == reflect.Ptr {
			f = f.Elem()
		}
		m[tag.Name] = f.Interface()
	}
	return m, nil
}
