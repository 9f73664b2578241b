/*
 * Copyright 2025 Databend Labs.
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
 */

package dialect

import (
	"fmt"
	"strings"
	"time"
)

// TimeGrain is an ISO-8601 duration naming a time bucket size.
type TimeGrain string

const (
	GrainMinute        TimeGrain = "PT1M"
	GrainFiveMinutes   TimeGrain = "PT5M"
	GrainTenMinutes    TimeGrain = "PT10M"
	GrainFifteenMinute TimeGrain = "PT15M"
	GrainHalfHour      TimeGrain = "PT30M"
	GrainHour          TimeGrain = "PT1H"
	GrainDay           TimeGrain = "P1D"
	GrainWeek          TimeGrain = "P1W"
	GrainMonth         TimeGrain = "P1M"
	GrainQuarter       TimeGrain = "P3M"
	GrainYear          TimeGrain = "P1Y"
)

var timeGrainExpressions = map[TimeGrain]string{
	"":                 "{col}",
	GrainMinute:        "to_start_of_minute(TO_DATETIME({col}))",
	GrainFiveMinutes:   "to_start_of_five_minutes(TO_DATETIME({col}))",
	GrainTenMinutes:    "to_start_of_ten_minutes(TO_DATETIME({col}))",
	GrainFifteenMinute: "to_start_of_fifteen_minutes(TO_DATETIME({col}))",
	GrainHalfHour:      "TO_DATETIME(intDiv(toUInt32(TO_DATETIME({col})), 1800)*1800)",
	GrainHour:          "to_start_of_hour(TO_DATETIME({col}))",
	GrainDay:           "to_start_of_day(TO_DATETIME({col}))",
	GrainWeek:          "to_monday(TO_DATETIME({col}))",
	GrainMonth:         "to_start_of_month(TO_DATETIME({col}))",
	GrainQuarter:       "to_start_of_quarter(TO_DATETIME({col}))",
	GrainYear:          "to_start_of_year(TO_DATETIME({col}))",
}

// TimeGrains lists the supported grains in ascending order of size.
func TimeGrains() []TimeGrain {
	return []TimeGrain{
		GrainMinute, GrainFiveMinutes, GrainTenMinutes, GrainFifteenMinute, GrainHalfHour,
		GrainHour, GrainDay, GrainWeek, GrainMonth, GrainQuarter, GrainYear,
	}
}

// TimeGrainExpression truncates the column expression col to grain. The
// empty grain returns col unchanged.
func TimeGrainExpression(grain TimeGrain, col string) (string, error) {
	tmpl, ok := timeGrainExpressions[grain]
	if !ok {
		return "", fmt.Errorf("unsupported time grain %q", string(grain))
	}
	return strings.ReplaceAll(tmpl, "{col}", col), nil
}

// ConvertDttm renders t as a literal of targetType, DATE or DATETIME. It
// reports false for other types.
func ConvertDttm(targetType string, t time.Time) (string, bool) {
	switch strings.ToUpper(targetType) {
	case "DATE":
		return "'" + t.Format("2006-01-02") + "'", true
	case "DATETIME":
		return "'" + t.Format("2006-01-02 15:04:05") + "'", true
	default:
		return "", false
	}
}
