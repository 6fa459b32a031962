package cleaning

import "strings"

// Category names a semantic column kind.
type Category string

const (
	CategoryTimestamp   Category = "timestamp"
	CategoryValue       Category = "value"
	CategoryTemperature Category = "temperature"
	CategoryRainfall    Category = "rainfall"
	CategoryHumidity    Category = "humidity"
)

// Rule maps a category to the keywords that identify its column.
type Rule struct {
	Category Category
	Keywords []string
}

// MeterRules detect the timestamp and value columns of meter exports.
var MeterRules = []Rule{
	{Category: CategoryTimestamp, Keywords: []string{"timestamp", "datetime", "date", "time"}},
	{Category: CategoryValue, Keywords: []string{"kwh", "energy", "consumption", "value"}},
}

// WeatherRules detect the measurement columns of weather exports.
var WeatherRules = []Rule{
	{Category: CategoryTemperature, Keywords: []string{"temp"}},
	{Category: CategoryRainfall, Keywords: []string{"rain", "precip"}},
	{Category: CategoryHumidity, Keywords: []string{"humid"}},
}

// Match is the optional result for one category.
type Match struct {
	Column string
	Index  int
	Found  bool
}

// ClassifyColumns returns, for each rule, the first header that contains one of
// its keywords case-insensitively. Headers are scanned in order; within a header
// keywords are tried in rule order. Categories are matched independently, so
// one header may satisfy several of them.
func ClassifyColumns(headers []string, rules []Rule) map[Category]Match {
	result := make(map[Category]Match, len(rules))
	for _, rule := range rules {
		match := Match{Index: -1}
		for i, header := range headers {
			if containsAny(strings.ToLower(header), rule.Keywords) {
				match = Match{Column: header, Index: i, Found: true}
				break
			}
		}
		result[rule.Category] = match
	}
	return result
}

func containsAny(header string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(header, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
