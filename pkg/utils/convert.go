/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package utils

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

var floatType = reflect.TypeOf(float64(0))
var stringType = reflect.TypeOf("")

// ConvertToFloat64 converts an unknown type to float64.
func ConvertToFloat64(unk interface{}) (float64, error) {
	switch i := unk.(type) {
	case float64:
		return i, nil
	case float32:
		return float64(i), nil
	case int64:
		return float64(i), nil
	case int32:
		return float64(i), nil
	case uint64:
		return float64(i), nil
	case uint32:
		return float64(i), nil
	case int:
		return float64(i), nil
	case string:
		return strconv.ParseFloat(i, 64)
	case nil:
		return math.NaN(), fmt.Errorf("can't convert nil to float64")
	default:
		v := reflect.ValueOf(unk)
		v = reflect.Indirect(v)
		if v.Type().ConvertibleTo(floatType) {
			fv := v.Convert(floatType)
			return fv.Float(), nil
		} else if v.Type().ConvertibleTo(stringType) {
			sv := v.Convert(stringType)
			s := sv.String()
			return strconv.ParseFloat(s, 64)
		}
		return math.NaN(), fmt.Errorf("can't convert %v to float64", v.Type())
	}
}

// ConvertToString converts an unknown type to string.
func ConvertToString(unk interface{}) string {
	switch i := unk.(type) {
	case string:
		return i
	case []byte:
		return string(i)
	case nil:
		return ""
	case fmt.Stringer:
		return i.String()
	default:
		return fmt.Sprintf("%v", unk)
	}
}

// ConvertToInt64 converts an unknown type to int64.
func ConvertToInt64(unk interface{}) (int64, error) {
	switch i := unk.(type) {
	case int64:
		return i, nil
	case int32:
		return int64(i), nil
	case int:
		return int64(i), nil
	case uint64:
		return int64(i), nil
	case uint32:
		return int64(i), nil
	case float64:
		return int64(i), nil
	case float32:
		return int64(i), nil
	case string:
		return strconv.ParseInt(i, 10, 64)
	default:
		f, err := ConvertToFloat64(unk)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	}
}
