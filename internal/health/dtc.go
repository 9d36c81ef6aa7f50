package health

import "strings"

// dtcRule maps a trouble-code prefix to the service it calls for.
type dtcRule struct {
	Prefix      string
	Type        RecommendationType
	Title       string
	Description string
}

// dtcRules covers the generic powertrain (P0) ranges we know how to act on.
// P02 (injector circuit) and P05 and above are intentionally absent.
var dtcRules = []dtcRule{
	{"P00", TypeFuelSystem, "Fuel system service", "Fuel and air metering fault reported"},
	{"P01", TypeAirFuelRatio, "Air/fuel ratio check", "Air/fuel metering or oxygen sensor fault reported"},
	{"P03", TypeIgnitionSystem, "Ignition system service", "Ignition or misfire fault reported"},
	{"P04", TypeAuxiliaryEmissions, "Emissions control service", "Auxiliary emission control fault reported"},
}

// lookupDTC returns the rule matching code, if any. Codes are matched case-insensitively.
func lookupDTC(code string) (dtcRule, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, rule := range dtcRules {
		if strings.HasPrefix(code, rule.Prefix) {
			return rule, true
		}
	}
	return dtcRule{}, false
}
